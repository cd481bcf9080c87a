/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocol

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/microledger"
)

var logger = log.New("microledger-protocol")

// Integrator applies received ledger updates to local mirrors.
type Integrator struct {
	opts *microledger.Options
}

// NewIntegrator returns an integrator creating new mirrors with opts.
func NewIntegrator(opts *microledger.Options) *Integrator {
	return &Integrator{opts: opts}
}

// Integrate applies lu to ml, or to a new mirror of the update's DID when ml is nil,
// and returns the mirror. Either every new event is appended or none is; a new mirror
// that fails is discarded.
//
// Events the mirror already holds are dropped after checking they match. The rest must
// continue the mirror without a gap and pass validation against the evolving DID
// document. The root the mirror has at the update's last event must equal the root
// the sender claims, otherwise ErrDivergentRoot is returned and nothing is appended.
func (i *Integrator) Integrate(ml *microledger.Microledger, lu *LedgerUpdate) (*microledger.Microledger, error) {
	did, err := lu.DID()
	if err != nil {
		return nil, err
	}

	if err := checkContiguous(lu.Events); err != nil {
		return nil, err
	}

	if ml == nil {
		ml, err = i.newMirror(did, lu)
		if err != nil {
			return nil, err
		}
	} else if ml.DID() != did {
		return nil, errors.Wrapf(mlerr.ErrInvalidLedgerUpdate, "update of [%s] applied to ledger of [%s]", did, ml.DID())
	}

	fresh, err := unseen(ml, lu.Events)
	if err != nil {
		return nil, err
	}

	txns := make([]string, len(fresh))
	for j, e := range fresh {
		txns[j] = e.Txn
	}

	if len(fresh) > 0 {
		if err := ml.Check(txns); err != nil {
			return nil, errors.Wrapf(mlerr.ErrInvalidLedgerUpdate, "[%s]: %s", did, err)
		}
	}

	if err := checkRoot(ml, lu, txns); err != nil {
		return nil, err
	}

	if len(fresh) == 0 {
		logger.Debug("Ledger update holds no new txns", log.WithDID(did), log.WithSize(ml.Size()))

		return ml, nil
	}

	if _, err := ml.AddValidated(txns); err != nil {
		return nil, errors.Wrapf(mlerr.ErrInvalidLedgerUpdate, "[%s]: %s", did, err)
	}

	logger.Debug("Integrated ledger update", log.WithDID(did), log.WithEvents(lu.SeqNos()...),
		log.WithSize(ml.Size()), log.WithRoot(ml.Root()))

	return ml, nil
}

func (i *Integrator) newMirror(did string, lu *LedgerUpdate) (*microledger.Microledger, error) {
	if len(lu.Events) > 0 && lu.Events[0].SeqNo != 1 {
		return nil, errors.Wrapf(mlerr.ErrInvalidLedgerUpdate,
			"update for new mirror of [%s] starts at seq %d", did, lu.Events[0].SeqNo)
	}

	ml, err := microledger.New(did, i.opts)
	if err != nil {
		return nil, errors.WithMessagef(err, "create mirror of [%s]", did)
	}

	logger.Debug("Created mirror", log.WithDID(did), log.WithSize(ml.Size()))

	return ml, nil
}

func checkContiguous(events []Event) error {
	for j, e := range events {
		if e.SeqNo == 0 {
			return errors.Wrap(mlerr.ErrInvalidLedgerUpdate, "event seq numbers start at 1")
		}

		if j > 0 && e.SeqNo != events[j-1].SeqNo+1 {
			return errors.Wrapf(mlerr.ErrInvalidLedgerUpdate, "events are not contiguous: %d follows %d",
				e.SeqNo, events[j-1].SeqNo)
		}
	}

	return nil
}

// unseen drops the events the ledger holds and returns the rest, which must start
// right after the end of the ledger.
func unseen(ml *microledger.Microledger, events []Event) ([]Event, error) {
	size := ml.Size()

	var fresh []Event

	for j, e := range events {
		if e.SeqNo > size {
			fresh = events[j:]

			break
		}

		local, err := ml.Get(e.SeqNo, e.SeqNo)
		if err != nil {
			return nil, err
		}

		if local[0] != e.Txn {
			return nil, errors.Wrapf(mlerr.ErrInvalidLedgerUpdate, "event %d of [%s] conflicts with the local txn",
				e.SeqNo, ml.DID())
		}
	}

	if len(fresh) > 0 && fresh[0].SeqNo != size+1 {
		return nil, errors.Wrapf(mlerr.ErrInvalidLedgerUpdate, "gap in update of [%s]: expecting seq %d, got %d",
			ml.DID(), size+1, fresh[0].SeqNo)
	}

	return fresh, nil
}

func checkRoot(ml *microledger.Microledger, lu *LedgerUpdate, fresh []string) error {
	if len(lu.Events) == 0 {
		return nil
	}

	last := lu.Events[len(lu.Events)-1].SeqNo

	var root string

	if len(fresh) > 0 {
		root = ml.ProspectiveRoot(fresh)
	} else {
		var err error

		root, err = ml.RootAt(last)
		if err != nil {
			return err
		}
	}

	if root != lu.Root {
		logger.Warn("Divergent root", log.WithDID(ml.DID()), log.WithSeqNo(last), log.WithRoot(root),
			log.WithClaimedRoot(lu.Root))

		return errors.Wrapf(mlerr.ErrDivergentRoot, "[%s] at seq %d: local root %s, claimed %s",
			ml.DID(), last, root, lu.Root)
	}

	return nil
}
