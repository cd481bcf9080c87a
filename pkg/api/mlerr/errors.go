/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mlerr defines the error kinds reported by microledger components.
// Components wrap these with context; callers test the kind with errors.Is.
package mlerr

import "errors"

var (
	// ErrMalformedTxn is returned when a txn is not a JSON object of the expected shape.
	ErrMalformedTxn = errors.New("malformed txn")

	// ErrInvalidTxn is returned when a well-formed txn violates ledger or document invariants.
	ErrInvalidTxn = errors.New("invalid txn")

	// ErrInvalidSignature is returned when cryptographic verification fails.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUnauthorized is returned when the signer lacks the required authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidLedgerUpdate is returned for gaps, bad starting points or failed validation
	// while integrating a ledger update.
	ErrInvalidLedgerUpdate = errors.New("invalid ledger update")

	// ErrDivergentRoot is returned when the integrated ledger does not match the sender's root.
	ErrDivergentRoot = errors.New("divergent root")

	// ErrUnknownDID is returned when no microledger exists for a DID.
	ErrUnknownDID = errors.New("unknown DID")

	// ErrUnknownKey is returned when a verkey is not present in the DID document or wallet.
	ErrUnknownKey = errors.New("unknown key")

	// ErrStorage is returned on storage backend failures.
	ErrStorage = errors.New("storage error")

	// ErrOutOfRange is returned for reads outside of [1, size].
	ErrOutOfRange = errors.New("out of range")

	// ErrMalformedMessage is returned for protocol envelopes that cannot be decoded.
	ErrMalformedMessage = errors.New("malformed message")
)
