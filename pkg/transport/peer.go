/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"github.com/trustbloc/microledger-go/pkg/internal/log"
)

var logger = log.New("microledger-transport")

// Peer is the transport handle of an agent: an inbox filled by the network and an
// outbox drained by it.
type Peer struct {
	name   string
	inbox  Queue
	outbox Queue
}

// NewPeer returns a peer with the given name.
func NewPeer(name string) *Peer {
	return &Peer{name: name}
}

// Name returns the name the peer is addressed by.
func (p *Peer) Name() string {
	return p.name
}

// Process removes and returns all messages in the inbox in arrival order.
func (p *Peer) Process() []string {
	envelopes, _ := p.inbox.Remove(p.inbox.Len())

	msgs := make([]string, len(envelopes))
	for i, e := range envelopes {
		msgs[i] = e.Msg
	}

	if len(msgs) > 0 {
		logger.Debug("Drained inbox", log.WithPeerID(p.name), log.WithTotal(len(msgs)))
	}

	return msgs
}

// AddToOutbox queues msg for delivery to peerID.
func (p *Peer) AddToOutbox(peerID, msg string) {
	p.outbox.Add(&Envelope{To: peerID, Msg: msg})
}

// Deliver puts msg in the inbox.
func (p *Peer) Deliver(msg string) {
	p.inbox.Add(&Envelope{To: p.name, Msg: msg})
}

// Pending returns the number of messages waiting in the inbox.
func (p *Peer) Pending() uint {
	return p.inbox.Len()
}

// Outgoing returns the number of messages waiting in the outbox.
func (p *Peer) Outgoing() uint {
	return p.outbox.Len()
}

func (p *Peer) nextOutgoing() (*Envelope, bool) {
	envelopes, _ := p.outbox.Remove(1)
	if len(envelopes) == 0 {
		return nil, false
	}

	return envelopes[0], true
}
