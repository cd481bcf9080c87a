/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocol

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
)

// Ledger is the read side of a microledger needed to build an update.
type Ledger interface {
	DID() string
	Size() uint64
	RootAt(n uint64) (string, error)
	Get(from, to uint64) ([]string, error)
}

// NewLedgerUpdate returns the txns of the ledger from seq from to its end together with
// the root of the whole ledger. A from past the end gives an update without events.
func NewLedgerUpdate(ml Ledger, from uint64) (*LedgerUpdate, error) {
	if from == 0 {
		return nil, errors.Wrap(mlerr.ErrOutOfRange, "ledger update must start at seq 1 or later")
	}

	size := ml.Size()

	root, err := ml.RootAt(size)
	if err != nil {
		return nil, err
	}

	events := []Event{}

	if from <= size {
		txns, err := ml.Get(from, size)
		if err != nil {
			return nil, err
		}

		for i, t := range txns {
			events = append(events, Event{SeqNo: from + uint64(i), Txn: t})
		}
	}

	return &LedgerUpdate{
		Type:   TypeLedgerUpdate,
		State:  StatePrefix + ml.DID(),
		Root:   root,
		Events: events,
	}, nil
}

// Txns returns the txns of the events.
func (lu *LedgerUpdate) Txns() []string {
	txns := make([]string, len(lu.Events))
	for i, e := range lu.Events {
		txns[i] = e.Txn
	}

	return txns
}

// SeqNos returns the seq numbers of the events.
func (lu *LedgerUpdate) SeqNos() []uint64 {
	seqs := make([]uint64, len(lu.Events))
	for i, e := range lu.Events {
		seqs[i] = e.SeqNo
	}

	return seqs
}
