/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package microledger implements the per-DID append-only txn log and keeps its DID
// document projection in step with it.
package microledger

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/api/txn"
	"github.com/trustbloc/microledger-go/pkg/authz"
	"github.com/trustbloc/microledger-go/pkg/crypto"
	"github.com/trustbloc/microledger-go/pkg/diddoc"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/merkle"
	"github.com/trustbloc/microledger-go/pkg/storage"
	"github.com/trustbloc/microledger-go/pkg/txnbuilder"
)

var logger = log.New("microledger")

// Signer obtains signatures from a key store (a wallet).
type Signer interface {
	Sign(verkey string, msg []byte) ([]byte, error)
}

// SignerContext names the key that signs txns built by the helpers.
type SignerContext struct {
	Signer Signer
	Verkey string
}

// Microledger is the txn log of one DID.
type Microledger struct {
	mutex      sync.RWMutex
	did        string
	log        *merkle.Log
	doc        *diddoc.DidDoc
	builder    *txnbuilder.Builder
	authorizer *authz.Authorizer
}

// New opens the microledger of did. Existing entries are replayed into the DID document.
func New(did string, opts *Options) (*Microledger, error) {
	if did == "" {
		return nil, errors.Wrap(mlerr.ErrInvalidTxn, "DID is required")
	}

	if opts == nil || opts.Provider == nil {
		return nil, errors.New("storage provider is required")
	}

	builder := opts.Builder
	if builder == nil {
		builder = txnbuilder.New()
	}

	var verifier authz.Verifier = crypto.New()
	if opts.Verifier != nil {
		verifier = opts.Verifier
	}

	name := storage.LogName(opts.AgentPath, did)

	store, err := opts.Provider.OpenLog(name)
	if err != nil {
		return nil, errors.WithMessagef(err, "open log [%s]", name)
	}

	l, err := merkle.New(store)
	if err != nil {
		return nil, errors.WithMessagef(err, "load log [%s]", name)
	}

	ml := &Microledger{
		did:        did,
		log:        l,
		builder:    builder,
		authorizer: authz.New(verifier),
	}

	doc, err := ml.replay(diddoc.New(did))
	if err != nil {
		return nil, err
	}

	ml.doc = doc

	logger.Debug("Opened microledger", log.WithDID(did), log.WithSize(l.Size()), log.WithRoot(l.Root()))

	return ml, nil
}

func (ml *Microledger) replay(doc *diddoc.DidDoc) (*diddoc.DidDoc, error) {
	size := ml.log.Size()

	entries, err := ml.log.Get(doc.LastAppliedSeqNo()+1, size)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		t, err := txnbuilder.Parse(string(e))
		if err != nil {
			return nil, errors.WithMessagef(err, "replay seq %d of [%s]", doc.LastAppliedSeqNo()+1, ml.did)
		}

		if err := doc.Apply(t); err != nil {
			return nil, errors.WithMessagef(err, "replay seq %d of [%s]", doc.LastAppliedSeqNo()+1, ml.did)
		}
	}

	return doc, nil
}

// RegisterDidDoc installs doc as the projection updated on every append. An empty doc
// is brought up to date with the ledger first.
func (ml *Microledger) RegisterDidDoc(doc *diddoc.DidDoc) error {
	ml.mutex.Lock()
	defer ml.mutex.Unlock()

	if doc.DID() != ml.did {
		return errors.Wrapf(mlerr.ErrUnknownDID, "DID document of [%s] registered with microledger of [%s]", doc.DID(), ml.did)
	}

	if doc.LastAppliedSeqNo() > ml.log.Size() {
		return errors.Wrapf(mlerr.ErrInvalidTxn, "DID document is ahead of the ledger: %d > %d",
			doc.LastAppliedSeqNo(), ml.log.Size())
	}

	synced, err := ml.replay(doc)
	if err != nil {
		return err
	}

	ml.doc = synced

	return nil
}

// DID returns the DID of the ledger.
func (ml *Microledger) DID() string {
	return ml.did
}

// Size returns the number of txns.
func (ml *Microledger) Size() uint64 {
	return ml.log.Size()
}

// Root returns the hex encoded Merkle root.
func (ml *Microledger) Root() string {
	return ml.log.Root()
}

// RootAt returns the hex encoded Merkle root of the first n txns.
func (ml *Microledger) RootAt(n uint64) (string, error) {
	return ml.log.RootAt(n)
}

// ProspectiveRoot returns the root the ledger would have after appending txns.
func (ml *Microledger) ProspectiveRoot(txns []string) string {
	return ml.log.ProspectiveRoot(toBytes(txns))
}

// MerkleLog returns the underlying Merkle log, for proofs.
func (ml *Microledger) MerkleLog() *merkle.Log {
	return ml.log
}

// Get returns the txns in [from, to].
func (ml *Microledger) Get(from, to uint64) ([]string, error) {
	entries, err := ml.log.Get(from, to)
	if err != nil {
		return nil, err
	}

	txns := make([]string, len(entries))
	for i, e := range entries {
		txns[i] = string(e)
	}

	return txns, nil
}

// GetFrom returns the txns from seq from to the end of the ledger.
func (ml *Microledger) GetFrom(from uint64) ([]string, error) {
	return ml.Get(from, ml.log.Size())
}

// DidDoc returns a snapshot of the DID document.
func (ml *Microledger) DidDoc() *diddoc.DidDoc {
	ml.mutex.RLock()
	defer ml.mutex.RUnlock()

	return ml.doc.Clone()
}

// Add appends a txn whose authorization the caller has verified and returns its seq no.
func (ml *Microledger) Add(txnStr string) (uint64, error) {
	return ml.AddMultiple([]string{txnStr})
}

// AddMultiple appends all txns or none and returns the seq no of the last one.
// Only structural validity is checked.
func (ml *Microledger) AddMultiple(txns []string) (uint64, error) {
	return ml.add(txns, nil)
}

// AddValidated appends all txns or none after checking each against the document as
// it evolves through the batch: the genesis nym, then signatures and authorizations.
func (ml *Microledger) AddValidated(txns []string) (uint64, error) {
	return ml.add(txns, ml.authorizer)
}

func (ml *Microledger) add(txns []string, authorizer *authz.Authorizer) (uint64, error) {
	ml.mutex.Lock()
	defer ml.mutex.Unlock()

	parsed, err := ml.stage(txns, authorizer)
	if err != nil {
		return 0, err
	}

	last, err := ml.log.AppendBatch(toBytes(txns))
	if err != nil {
		return 0, err
	}

	for _, t := range parsed {
		if err := ml.doc.Apply(t); err != nil {
			// validated on the staged copy above
			logger.Error("Failed to apply txn to DID document", log.WithDID(ml.did), log.WithError(err))
		}
	}

	logger.Debug("Appended txns", log.WithDID(ml.did), log.WithTotal(len(txns)),
		log.WithSize(last), log.WithRoot(ml.log.Root()))

	return last, nil
}

// Check reports whether AddValidated would accept txns, without appending them.
func (ml *Microledger) Check(txns []string) error {
	ml.mutex.RLock()
	defer ml.mutex.RUnlock()

	_, err := ml.stage(txns, ml.authorizer)

	return err
}

// stage applies txns to a copy of the document and returns them parsed.
func (ml *Microledger) stage(txns []string, authorizer *authz.Authorizer) ([]*txn.Txn, error) {
	staged := ml.doc.Clone()
	parsed := make([]*txn.Txn, len(txns))

	for i, s := range txns {
		seq := staged.LastAppliedSeqNo() + 1

		t, err := txnbuilder.Parse(s)
		if err != nil {
			return nil, errors.Wrapf(mlerr.ErrInvalidTxn, "seq %d: %s", seq, err)
		}

		// leaves hash the stored string while signatures cover the re-encoded txn
		if canonical, err := txnbuilder.Marshal(t); err != nil || canonical != s {
			return nil, errors.Wrapf(mlerr.ErrMalformedTxn, "seq %d: txn is not in canonical form", seq)
		}

		if authorizer != nil {
			if err := authorizer.Check(t, staged); err != nil {
				return nil, errors.WithMessagef(err, "seq %d", seq)
			}
		}

		if err := staged.Apply(t); err != nil {
			return nil, errors.WithMessagef(err, "seq %d", seq)
		}

		parsed[i] = t
	}

	return parsed, nil
}

// AddKeyTxn adds, updates or (with no authorizations) revokes a key. With a signer
// context the txn is signed first. Either way it is authorized against the current
// document, so without one it fails with ErrUnauthorized.
func (ml *Microledger) AddKeyTxn(verkey string, authorizations []txn.AuthzFlag, sc *SignerContext) (uint64, error) {
	txnStr, err := ml.builder.BuildKeyTxn(verkey, authorizations)
	if err != nil {
		return 0, err
	}

	return ml.addBuilt(txnStr, sc)
}

// AddEndpointTxn sets the endpoint of a key. See AddKeyTxn for the signer context.
func (ml *Microledger) AddEndpointTxn(verkey, address string, sc *SignerContext) (uint64, error) {
	txnStr, err := ml.builder.BuildEndpointTxn(verkey, address)
	if err != nil {
		return 0, err
	}

	return ml.addBuilt(txnStr, sc)
}

func (ml *Microledger) addBuilt(txnStr string, sc *SignerContext) (uint64, error) {
	if sc != nil {
		signed, err := Sign(txnStr, sc)
		if err != nil {
			return 0, err
		}

		txnStr = signed
	}

	return ml.AddValidated([]string{txnStr})
}

// Sign signs a txn with the key of the signer context.
func Sign(txnStr string, sc *SignerContext) (string, error) {
	input, err := txnbuilder.SigningInput(txnStr)
	if err != nil {
		return "", err
	}

	sig, err := sc.Signer.Sign(sc.Verkey, input)
	if err != nil {
		return "", errors.WithMessagef(err, "sign txn with [%s]", sc.Verkey)
	}

	return txnbuilder.AddSignature(txnStr, sc.Verkey, sig)
}

func toBytes(txns []string) [][]byte {
	b := make([][]byte, len(txns))
	for i, s := range txns {
		b[i] = []byte(s)
	}

	return b
}
