/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package authz decides whether a txn may be applied to a DID document.
//
// Policy:
//   - the first txn of a document is a Nym whose dest is the DID and needs no signature
//   - every later txn is signed by a key of the document
//   - Key granting authorizations requires ALL or ADD_KEY
//   - Key revoking (no authorizations) requires ALL or REM_KEY; a signer revoking its own
//     key must hold ALL
//   - Endpoint requires ALL or ADD_KEY, or the signer is the endpoint's key
//   - the signature verifies over the signing input under the signer's verkey
package authz

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/api/txn"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/txnbuilder"
)

var logger = log.New("microledger-authz")

// Document is the view of a DID document the authorizer needs.
type Document interface {
	DID() string
	LastAppliedSeqNo() uint64
	HasKey(verkey string) bool
	Authorizations(verkey string) txn.AuthzSet
}

// Verifier verifies Ed25519 signatures.
type Verifier interface {
	Verify(verkey string, msg, sig []byte) (bool, error)
}

// Authorizer checks txns against a document.
type Authorizer struct {
	verifier Verifier
}

// New returns an authorizer.
func New(verifier Verifier) *Authorizer {
	return &Authorizer{verifier: verifier}
}

// IsPermitted returns true if the txn may be applied to the document.
func (a *Authorizer) IsPermitted(t *txn.Txn, doc Document) bool {
	err := a.Check(t, doc)
	if err != nil {
		logger.Debug("Txn not permitted", log.WithDID(doc.DID()), log.WithError(err))

		return false
	}

	return true
}

// Check returns nil if the txn may be applied to the document, otherwise an error
// of kind ErrInvalidTxn, ErrUnknownKey, ErrUnauthorized or ErrInvalidSignature.
func (a *Authorizer) Check(t *txn.Txn, doc Document) error {
	if doc.LastAppliedSeqNo() == 0 {
		return checkGenesis(t, doc)
	}

	if t.Operation.Type == txn.TypeNym {
		return errors.Wrap(mlerr.ErrInvalidTxn, "nym is only allowed as the first txn")
	}

	if t.Signature == nil {
		return errors.Wrapf(mlerr.ErrUnauthorized, "%s txn is not signed", t.Operation.Type)
	}

	signer := t.Signature.Verkey

	if !doc.HasKey(signer) {
		return errors.Wrapf(mlerr.ErrUnknownKey, "signer [%s] is not a key of [%s]", signer, doc.DID())
	}

	if err := checkPolicy(t, signer, doc.Authorizations(signer)); err != nil {
		return err
	}

	return a.verifySignature(t)
}

func checkGenesis(t *txn.Txn, doc Document) error {
	if t.Operation.Type != txn.TypeNym {
		return errors.Wrapf(mlerr.ErrInvalidTxn, "first txn must be a nym, got %s", t.Operation.Type)
	}

	if t.Operation.Dest != doc.DID() {
		return errors.Wrapf(mlerr.ErrInvalidTxn, "nym dest [%s] does not match DID [%s]", t.Operation.Dest, doc.DID())
	}

	return nil
}

func checkPolicy(t *txn.Txn, signer string, granted txn.AuthzSet) error {
	target := t.Operation.Verkey

	switch t.Operation.Type {
	case txn.TypeKey:
		if t.IsRevoke() {
			if !granted.Permits(txn.AuthzRemKey) {
				return errors.Wrapf(mlerr.ErrUnauthorized, "signer [%s] may not revoke keys", signer)
			}

			if signer == target && !granted.Has(txn.AuthzAll) {
				return errors.Wrapf(mlerr.ErrUnauthorized, "signer [%s] may not revoke its own key", signer)
			}

			return nil
		}

		if !granted.Permits(txn.AuthzAddKey) {
			return errors.Wrapf(mlerr.ErrUnauthorized, "signer [%s] may not add keys", signer)
		}

		return nil
	case txn.TypeEndpoint:
		if signer == target && !granted.IsEmpty() {
			return nil
		}

		if !granted.Permits(txn.AuthzAddKey) {
			return errors.Wrapf(mlerr.ErrUnauthorized, "signer [%s] may not set the endpoint of [%s]", signer, target)
		}

		return nil
	default:
		return errors.Wrapf(mlerr.ErrInvalidTxn, "unexpected operation %s", t.Operation.Type)
	}
}

func (a *Authorizer) verifySignature(t *txn.Txn) error {
	sig, err := txnbuilder.SignatureBytes(t)
	if err != nil {
		return errors.Wrapf(mlerr.ErrInvalidSignature, "%s", err)
	}

	input, err := txnbuilder.Marshal(t.Unsigned())
	if err != nil {
		return err
	}

	ok, err := a.verifier.Verify(t.Signature.Verkey, []byte(input), sig)
	if err != nil {
		return errors.Wrapf(mlerr.ErrInvalidSignature, "verify signature: %s", err)
	}

	if !ok {
		return errors.Wrapf(mlerr.ErrInvalidSignature, "signature of [%s] does not verify", t.Signature.Verkey)
	}

	return nil
}
