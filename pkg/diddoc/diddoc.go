/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package diddoc maintains the DID document projection of a microledger: its keys,
// their authorizations and their endpoints.
package diddoc

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/api/txn"
	"github.com/trustbloc/microledger-go/pkg/authz"
	"github.com/trustbloc/microledger-go/pkg/canonicalizer"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
)

var logger = log.New("microledger-diddoc")

// DidDoc is the projection of the txns applied so far. Revoked keys (empty
// authorizations) are kept.
type DidDoc struct {
	did              string
	keys             map[string]txn.AuthzSet
	endpoints        map[string]string
	lastAppliedSeqNo uint64
}

// New returns an empty document for did.
func New(did string) *DidDoc {
	return &DidDoc{
		did:       did,
		keys:      make(map[string]txn.AuthzSet),
		endpoints: make(map[string]string),
	}
}

// DID returns the DID of the document.
func (d *DidDoc) DID() string {
	return d.did
}

// LastAppliedSeqNo returns the sequence number of the last applied txn.
func (d *DidDoc) LastAppliedSeqNo() uint64 {
	return d.lastAppliedSeqNo
}

// Validate checks that applying t keeps the document consistent, without applying it.
// Authorization is not checked here; see IsValidTxn.
func (d *DidDoc) Validate(t *txn.Txn) error {
	if d.lastAppliedSeqNo == 0 {
		if t.Operation.Type != txn.TypeNym {
			return errors.Wrapf(mlerr.ErrInvalidTxn, "first txn of [%s] must be a nym, got %s", d.did, t.Operation.Type)
		}

		if t.Operation.Dest != d.did {
			return errors.Wrapf(mlerr.ErrInvalidTxn, "nym dest [%s] does not match DID [%s]", t.Operation.Dest, d.did)
		}

		return nil
	}

	switch t.Operation.Type {
	case txn.TypeNym:
		return errors.Wrapf(mlerr.ErrInvalidTxn, "nym at seq %d of [%s]", d.lastAppliedSeqNo+1, d.did)
	case txn.TypeKey:
		return nil
	case txn.TypeEndpoint:
		if !d.HasKey(t.Operation.Verkey) {
			return errors.Wrapf(mlerr.ErrInvalidTxn, "endpoint for unknown key [%s]", t.Operation.Verkey)
		}

		return nil
	default:
		return errors.Wrapf(mlerr.ErrInvalidTxn, "unknown operation %s", t.Operation.Type)
	}
}

// Apply validates and applies t.
func (d *DidDoc) Apply(t *txn.Txn) error {
	if err := d.Validate(t); err != nil {
		return err
	}

	op := t.Operation

	switch op.Type {
	case txn.TypeNym:
		if op.Verkey != "" {
			d.keys[op.Verkey] = txn.NewAuthzSet(txn.AuthzAll)
		}
	case txn.TypeKey:
		d.keys[op.Verkey] = txn.NewAuthzSet(op.Authorizations...)
	case txn.TypeEndpoint:
		d.endpoints[op.Verkey] = op.Address
	}

	d.lastAppliedSeqNo++

	logger.Debug("Applied txn", log.WithDID(d.did), log.WithSeqNo(d.lastAppliedSeqNo),
		log.WithOperationType(op.Type.String()), log.WithVerkey(op.Verkey))

	return nil
}

// HasKey returns true if the key was ever added, including revoked keys.
func (d *DidDoc) HasKey(verkey string) bool {
	_, ok := d.keys[verkey]

	return ok
}

// Authorizations returns a copy of the authorizations of a key; empty for unknown or revoked keys.
func (d *DidDoc) Authorizations(verkey string) txn.AuthzSet {
	a, ok := d.keys[verkey]
	if !ok {
		return txn.NewAuthzSet()
	}

	return a.Clone()
}

// GetKeyAuthorisations returns the sorted authorizations of a key; empty for unknown or revoked keys.
func (d *DidDoc) GetKeyAuthorisations(verkey string) []txn.AuthzFlag {
	return d.Authorizations(verkey).Flags()
}

// IsValidTxn returns true if t is authorized against the document. The document is not modified.
func (d *DidDoc) IsValidTxn(t *txn.Txn, verifier authz.Verifier) bool {
	return d.Validate(t) == nil && authz.New(verifier).IsPermitted(t, d)
}

// Keys returns all keys with their sorted authorizations.
func (d *DidDoc) Keys() map[string][]txn.AuthzFlag {
	keys := make(map[string][]txn.AuthzFlag, len(d.keys))
	for k, a := range d.keys {
		keys[k] = a.Flags()
	}

	return keys
}

// Endpoint returns the endpoint of a key.
func (d *DidDoc) Endpoint(verkey string) (string, bool) {
	e, ok := d.endpoints[verkey]

	return e, ok
}

// Endpoints returns all endpoints keyed by verkey.
func (d *DidDoc) Endpoints() map[string]string {
	endpoints := make(map[string]string, len(d.endpoints))
	for k, e := range d.endpoints {
		endpoints[k] = e
	}

	return endpoints
}

// Clone returns an independent copy.
func (d *DidDoc) Clone() *DidDoc {
	c := New(d.did)
	c.lastAppliedSeqNo = d.lastAppliedSeqNo

	for k, a := range d.keys {
		c.keys[k] = a.Clone()
	}

	for k, e := range d.endpoints {
		c.endpoints[k] = e
	}

	return c
}

type docModel struct {
	DID              string                     `json:"did"`
	Endpoints        map[string]string          `json:"endpoints"`
	Keys             map[string][]txn.AuthzFlag `json:"keys"`
	LastAppliedSeqNo uint64                     `json:"lastAppliedSeqNo"`
}

// Bytes returns the canonical JSON of the document. Documents built from the same txns
// have identical bytes.
func (d *DidDoc) Bytes() ([]byte, error) {
	return canonicalizer.MarshalCanonical(&docModel{
		DID:              d.did,
		Endpoints:        d.Endpoints(),
		Keys:             d.Keys(),
		LastAppliedSeqNo: d.lastAppliedSeqNo,
	})
}
