/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package txnbuilder builds, signs and parses canonical microledger txns.
package txnbuilder

import (
	"bytes"
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/api/txn"
	"github.com/trustbloc/microledger-go/pkg/canonicalizer"
)

const (
	// DefaultProtocolVersion is the protocol version written into new txns.
	DefaultProtocolVersion = 1

	// DefaultTxnVersion is the txn version written into new txns.
	DefaultTxnVersion = 1
)

// Option is a builder option.
type Option func(b *Builder)

// WithProtocolVersion sets the protocol version of built txns.
func WithProtocolVersion(v int) Option {
	return func(b *Builder) {
		b.protocolVersion = v
	}
}

// WithTxnVersion sets the txn version of built txns.
func WithTxnVersion(v int) Option {
	return func(b *Builder) {
		b.txnVersion = v
	}
}

// Builder creates canonical txn strings.
type Builder struct {
	protocolVersion int
	txnVersion      int
}

// New returns a builder using the default versions unless overridden.
func New(opts ...Option) *Builder {
	b := &Builder{
		protocolVersion: DefaultProtocolVersion,
		txnVersion:      DefaultTxnVersion,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// ProtocolVersion returns the protocol version of built txns.
func (b *Builder) ProtocolVersion() int {
	return b.protocolVersion
}

// TxnVersion returns the txn version of built txns.
func (b *Builder) TxnVersion() int {
	return b.txnVersion
}

// BuildNymTxn builds a Nym txn. The verkey is optional.
func (b *Builder) BuildNymTxn(dest, verkey string) (string, error) {
	if dest == "" {
		return "", errors.Wrap(mlerr.ErrMalformedTxn, "nym dest is required")
	}

	return b.build(txn.Operation{Type: txn.TypeNym, Dest: dest, Verkey: verkey})
}

// BuildKeyTxn builds a Key txn. Authorizations are written sorted and without duplicates;
// an empty set revokes the key.
func (b *Builder) BuildKeyTxn(verkey string, authorizations []txn.AuthzFlag) (string, error) {
	if verkey == "" {
		return "", errors.Wrap(mlerr.ErrMalformedTxn, "key verkey is required")
	}

	flags := make([]txn.AuthzFlag, 0, len(authorizations))
	seen := make(map[txn.AuthzFlag]struct{}, len(authorizations))

	// caller order is kept since it is part of the signed bytes
	for _, a := range authorizations {
		if !a.IsValid() {
			return "", errors.Wrapf(mlerr.ErrMalformedTxn, "invalid authorization [%s]", a)
		}

		if _, ok := seen[a]; ok {
			continue
		}

		seen[a] = struct{}{}
		flags = append(flags, a)
	}

	return b.build(txn.Operation{
		Type:           txn.TypeKey,
		Verkey:         verkey,
		Authorizations: flags,
	})
}

// BuildEndpointTxn builds an Endpoint txn.
func (b *Builder) BuildEndpointTxn(verkey, address string) (string, error) {
	if verkey == "" {
		return "", errors.Wrap(mlerr.ErrMalformedTxn, "endpoint verkey is required")
	}

	return b.build(txn.Operation{Type: txn.TypeEndpoint, Verkey: verkey, Address: address})
}

func (b *Builder) build(op txn.Operation) (string, error) {
	return Marshal(&txn.Txn{
		ProtocolVersion: b.protocolVersion,
		TxnVersion:      b.txnVersion,
		Operation:       op,
	})
}

// Marshal returns the canonical string of a txn.
func Marshal(t *txn.Txn) (string, error) {
	bytes, err := canonicalizer.MarshalCanonical(t)
	if err != nil {
		return "", errors.Wrapf(mlerr.ErrMalformedTxn, "marshal txn: %s", err)
	}

	return string(bytes), nil
}

// AddSignature attaches a signature to a txn and returns the canonical signed txn.
// Any existing signature is replaced, so repeating the call with the same inputs gives the same result.
func AddSignature(txnStr, signerVerkey string, sig []byte) (string, error) {
	if signerVerkey == "" {
		return "", errors.Wrap(mlerr.ErrMalformedTxn, "signer verkey is required")
	}

	if len(sig) == 0 {
		return "", errors.Wrap(mlerr.ErrMalformedTxn, "signature is required")
	}

	t, err := Parse(txnStr)
	if err != nil {
		return "", err
	}

	t.Signature = &txn.Signature{
		Verkey: signerVerkey,
		Value:  base58.Encode(sig),
	}

	return Marshal(t)
}

// SigningInput returns the canonical bytes of the txn with the signature removed.
func SigningInput(txnStr string) ([]byte, error) {
	t, err := Parse(txnStr)
	if err != nil {
		return nil, err
	}

	s, err := Marshal(t.Unsigned())
	if err != nil {
		return nil, err
	}

	return []byte(s), nil
}

// SignatureBytes returns the decoded signature of a parsed txn.
func SignatureBytes(t *txn.Txn) ([]byte, error) {
	if t.Signature == nil {
		return nil, errors.Wrap(mlerr.ErrInvalidSignature, "txn is not signed")
	}

	sig := base58.Decode(t.Signature.Value)
	if len(sig) == 0 {
		return nil, errors.Wrapf(mlerr.ErrMalformedTxn, "signature is not base58 [%s]", t.Signature.Value)
	}

	return sig, nil
}

type rawTxn struct {
	ProtocolVersion *int            `json:"protocolVersion"`
	TxnVersion      *int            `json:"txnVersion"`
	Operation       json.RawMessage `json:"operation"`
	Signature       json.RawMessage `json:"signature"`
}

// Parse parses a canonical txn string.
func Parse(txnStr string) (*txn.Txn, error) {
	trimmed := bytes.TrimSpace([]byte(txnStr))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Wrap(mlerr.ErrMalformedTxn, "txn is not a JSON object")
	}

	raw := &rawTxn{}
	if err := decodeStrict(trimmed, raw); err != nil {
		return nil, errors.Wrapf(mlerr.ErrMalformedTxn, "unmarshal txn: %s", err)
	}

	if raw.ProtocolVersion == nil || raw.TxnVersion == nil {
		return nil, errors.Wrap(mlerr.ErrMalformedTxn, "missing txn version properties")
	}

	if len(raw.Operation) == 0 || string(raw.Operation) == "null" {
		return nil, errors.Wrap(mlerr.ErrMalformedTxn, "missing operation")
	}

	t := &txn.Txn{
		ProtocolVersion: *raw.ProtocolVersion,
		TxnVersion:      *raw.TxnVersion,
	}

	if err := json.Unmarshal(raw.Operation, &t.Operation); err != nil {
		return nil, errors.Wrapf(mlerr.ErrMalformedTxn, "%s", err)
	}

	if len(raw.Signature) > 0 && string(raw.Signature) != "null" {
		sig := &txn.Signature{}
		if err := decodeStrict(raw.Signature, sig); err != nil {
			return nil, errors.Wrapf(mlerr.ErrMalformedTxn, "unmarshal signature: %s", err)
		}

		if sig.Value == "" || sig.Verkey == "" {
			return nil, errors.Wrap(mlerr.ErrMalformedTxn, "incomplete signature")
		}

		t.Signature = sig
	}

	return t, nil
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}
