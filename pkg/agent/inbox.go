/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/protocol"
	"github.com/trustbloc/microledger-go/pkg/transport"
)

// ProcessInbox handles every message waiting in the inbox, in arrival order. A message
// that fails is dropped and its error recorded; the others are still handled. Replies
// are queued on the outbox once the inbox is drained. The returned error combines the
// errors of the dropped messages.
func (a *Agent) ProcessInbox() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var (
		errs    error
		replies []*transport.Envelope
	)

	for _, raw := range a.peer.Process() {
		reply, err := a.receive(raw)
		if err != nil {
			errs = multierr.Append(errs, err)

			continue
		}

		if reply != nil {
			replies = append(replies, reply)
		}
	}

	for _, r := range replies {
		a.peer.AddToOutbox(r.To, r.Msg)
	}

	return errs
}

// Receive handles a single message without going through the inbox. Messages already
// waiting in the inbox are left there. A reply is queued on the outbox.
func (a *Agent) Receive(raw string) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	reply, err := a.receive(raw)
	if err != nil {
		return err
	}

	if reply != nil {
		a.peer.AddToOutbox(reply.To, reply.Msg)
	}

	return nil
}

func (a *Agent) receive(raw string) (*transport.Envelope, error) {
	reply, err := a.handle(raw)
	if err != nil {
		logger.Warn("Dropping message", log.WithDID(a.did), log.WithPeerID(a.peerID), log.WithError(err))

		a.errs = append(a.errs, err)

		return nil, err
	}

	return reply, nil
}

func (a *Agent) handle(raw string) (*transport.Envelope, error) {
	msg, err := protocol.Decode(raw)
	if err != nil {
		return nil, err
	}

	logger.Debug("Handling message", log.WithDID(a.did), log.WithMessageType(msg.MsgType()))

	switch m := msg.(type) {
	case *protocol.Connection:
		return a.handleConnection(m)
	case *protocol.ConnectionResponse:
		lu, err := protocol.DecodeLedgerUpdate(m.Message)
		if err != nil {
			return nil, err
		}

		return nil, a.integrate(lu)
	case *protocol.Message:
		return nil, a.handleMessage(m)
	default:
		return nil, errors.Wrapf(mlerr.ErrMalformedMessage, "unexpected %s outside a message", msg.MsgType())
	}
}

func (a *Agent) handleConnection(c *protocol.Connection) (*transport.Envelope, error) {
	lu, err := protocol.DecodeLedgerUpdate(c.Message)
	if err != nil {
		return nil, err
	}

	if err := a.integrate(lu); err != nil {
		return nil, err
	}

	own, err := protocol.NewLedgerUpdate(a.ledgers[a.did], 1)
	if err != nil {
		return nil, err
	}

	resp, err := protocol.NewConnectionResponse(a.peerID, own)
	if err != nil {
		return nil, err
	}

	msg, err := protocol.Marshal(resp)
	if err != nil {
		return nil, err
	}

	return &transport.Envelope{To: c.ID, Msg: msg}, nil
}

func (a *Agent) handleMessage(m *protocol.Message) error {
	if err := protocol.VerifyMessage(a.verifier, m); err != nil {
		return err
	}

	payloadType, err := protocol.PayloadType(m.Payload)
	if err != nil {
		return errors.WithMessagef(err, "payload of message from [%s]", m.ID)
	}

	if payloadType != protocol.TypeLedgerUpdate {
		logger.Debug("Received message", log.WithDID(m.ID), log.WithMessageType(payloadType))

		a.messages = append(a.messages, m)

		return nil
	}

	lu, err := protocol.DecodeLedgerUpdate(m.Payload)
	if err != nil {
		return err
	}

	if len(lu.Events) == 0 {
		return nil
	}

	return a.integrate(lu)
}

// integrate applies lu to the mirror of its DID, creating the mirror when there is none.
func (a *Agent) integrate(lu *protocol.LedgerUpdate) error {
	did, err := lu.DID()
	if err != nil {
		return err
	}

	if _, ok := a.divergent[did]; ok {
		return errors.Wrapf(mlerr.ErrDivergentRoot, "mirror of [%s] is divergent", did)
	}

	existing := a.ledgers[did]

	ml, err := a.integrator.Integrate(existing, lu)
	if err != nil {
		// only mirrors become divergent; a bad update of the own ledger is just rejected
		if errors.Is(err, mlerr.ErrDivergentRoot) && did != a.did {
			a.divergent[did] = struct{}{}
		}

		return err
	}

	if existing == nil {
		a.ledgers[did] = ml

		logger.Info("Added mirror", log.WithDID(did), log.WithSize(ml.Size()), log.WithRoot(ml.Root()))
	}

	if did != a.did {
		a.remoteDID = did
	}

	return nil
}
