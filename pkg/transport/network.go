/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package transport is an in-process message transport between agents. A Network
// routes messages between registered peers in a deterministic order.
package transport

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/trustbloc/microledger-go/pkg/internal/log"
)

// ErrUnknownPeer is returned when a message is addressed to a peer that is not registered.
var ErrUnknownPeer = errors.New("unknown peer")

// Network delivers messages between registered peers.
type Network struct {
	name  string
	mutex sync.RWMutex
	peers map[string]*Peer
	order []*Peer
}

// NewNetwork returns an empty network.
func NewNetwork(name string) *Network {
	return &Network{
		name:  name,
		peers: make(map[string]*Peer),
	}
}

// Name returns the name of the network.
func (n *Network) Name() string {
	return n.name
}

// RegisterPeer adds a peer. Peers are served in registration order.
func (n *Network) RegisterPeer(p *Peer) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if _, ok := n.peers[p.Name()]; ok {
		return errors.Errorf("peer [%s] is already registered with network [%s]", p.Name(), n.name)
	}

	n.peers[p.Name()] = p
	n.order = append(n.order, p)

	logger.Debug("Registered peer", log.WithPeerID(p.Name()))

	return nil
}

// SendMessage delivers msg to the inbox of peerID.
func (n *Network) SendMessage(msg, peerID string) error {
	n.mutex.RLock()
	p, ok := n.peers[peerID]
	n.mutex.RUnlock()

	if !ok {
		return errors.Wrapf(ErrUnknownPeer, "[%s]", peerID)
	}

	p.Deliver(msg)

	return nil
}

// ProcessOutboxesForAllPeers moves every queued outgoing message to its recipient's
// inbox. Peers take turns in registration order, one message per turn, until all
// outboxes are empty. Messages to unknown peers are dropped and reported.
func (n *Network) ProcessOutboxesForAllPeers() error {
	n.mutex.RLock()
	order := make([]*Peer, len(n.order))
	copy(order, n.order)
	n.mutex.RUnlock()

	var errs error

	for delivered := true; delivered; {
		delivered = false

		for _, p := range order {
			e, ok := p.nextOutgoing()
			if !ok {
				continue
			}

			delivered = true

			if err := n.SendMessage(e.Msg, e.To); err != nil {
				logger.Warn("Dropping message", log.WithPeerID(p.Name()), log.WithError(err))

				errs = multierr.Append(errs, errors.WithMessagef(err, "from [%s]", p.Name()))
			}
		}
	}

	return errs
}
