/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"sort"
)

// OperationType is the wire code of a microledger operation.
type OperationType string

const (
	// TypeNym establishes the DID. It must be the first txn of a microledger.
	TypeNym OperationType = "1"

	// TypeKey adds, updates or (with empty authorizations) revokes a key.
	TypeKey OperationType = "2"

	// TypeEndpoint associates a service address with an existing key.
	TypeEndpoint OperationType = "3"
)

// String returns a readable name of the operation type.
func (t OperationType) String() string {
	switch t {
	case TypeNym:
		return "NYM"
	case TypeKey:
		return "KEY"
	case TypeEndpoint:
		return "ENDPOINT"
	default:
		return "UNKNOWN(" + string(t) + ")"
	}
}

// IsValid returns true for known operation types.
func (t OperationType) IsValid() bool {
	return t == TypeNym || t == TypeKey || t == TypeEndpoint
}

// AuthzFlag is an authorization held by a key.
type AuthzFlag string

const (
	// AuthzAll implies every other flag when gating operations.
	AuthzAll AuthzFlag = "all"

	// AuthzAddKey allows adding or modifying keys and endpoints.
	AuthzAddKey AuthzFlag = "add_key"

	// AuthzRemKey allows revoking keys.
	AuthzRemKey AuthzFlag = "rem_key"

	// AuthzMProx allows proxying (relaying) messages.
	AuthzMProx AuthzFlag = "mprox"
)

// IsValid returns true for known authorization flags.
func (f AuthzFlag) IsValid() bool {
	switch f {
	case AuthzAll, AuthzAddKey, AuthzRemKey, AuthzMProx:
		return true
	default:
		return false
	}
}

// Txn is a microledger transaction. The JSON field order of this struct is part of the
// canonical form: protocolVersion, txnVersion, operation, signature.
type Txn struct {
	ProtocolVersion int        `json:"protocolVersion"`
	TxnVersion      int        `json:"txnVersion"`
	Operation       Operation  `json:"operation"`
	Signature       *Signature `json:"signature,omitempty"`
}

// Operation is the tagged operation of a txn. Only the fields relevant to Type are set.
type Operation struct {
	Type           OperationType
	Dest           string
	Verkey         string
	Authorizations []AuthzFlag
	Address        string
}

// Signature is a detached Ed25519 signature over the signing input of a txn.
// Both values are base58 encoded.
type Signature struct {
	Value  string `json:"sig"`
	Verkey string `json:"verkey"`
}

// IsRevoke returns true if the txn is a Key operation with no authorizations.
func (t *Txn) IsRevoke() bool {
	return t.Operation.Type == TypeKey && len(t.Operation.Authorizations) == 0
}

// SignerVerkey returns the verkey of the signer or an empty string for unsigned txns.
func (t *Txn) SignerVerkey() string {
	if t.Signature == nil {
		return ""
	}

	return t.Signature.Verkey
}

// Unsigned returns a copy of the txn without its signature.
func (t *Txn) Unsigned() *Txn {
	c := *t
	c.Signature = nil
	c.Operation.Authorizations = append([]AuthzFlag(nil), t.Operation.Authorizations...)

	return &c
}

// AuthzSet is a set of authorization flags.
type AuthzSet map[AuthzFlag]struct{}

// NewAuthzSet returns a set holding the given flags.
func NewAuthzSet(flags ...AuthzFlag) AuthzSet {
	s := make(AuthzSet, len(flags))
	for _, f := range flags {
		s[f] = struct{}{}
	}

	return s
}

// Has returns true if the flag is literally present.
func (s AuthzSet) Has(flag AuthzFlag) bool {
	_, ok := s[flag]

	return ok
}

// Permits returns true if the flag is present or implied by AuthzAll.
func (s AuthzSet) Permits(flag AuthzFlag) bool {
	return s.Has(flag) || s.Has(AuthzAll)
}

// IsEmpty returns true for revoked (or unknown) keys.
func (s AuthzSet) IsEmpty() bool {
	return len(s) == 0
}

// Flags returns the flags in lexicographic order.
func (s AuthzSet) Flags() []AuthzFlag {
	flags := make([]AuthzFlag, 0, len(s))
	for f := range s {
		flags = append(flags, f)
	}

	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })

	return flags
}

// Clone returns a copy of the set.
func (s AuthzSet) Clone() AuthzSet {
	c := make(AuthzSet, len(s))
	for f := range s {
		c[f] = struct{}{}
	}

	return c
}
