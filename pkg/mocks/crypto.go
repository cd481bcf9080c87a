/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/crypto"
)

// MockSigner signs with the keys it was given.
type MockSigner struct {
	Keys    map[string]*crypto.KeyInfo
	SignErr error
}

// NewMockSigner creates mock signer holding keys
func NewMockSigner(keys ...*crypto.KeyInfo) *MockSigner {
	s := &MockSigner{Keys: make(map[string]*crypto.KeyInfo)}
	for _, k := range keys {
		s.Keys[k.Verkey] = k
	}

	return s
}

// Sign mocks signing msg with the key of verkey
func (m *MockSigner) Sign(verkey string, msg []byte) ([]byte, error) {
	if m.SignErr != nil {
		return nil, m.SignErr
	}

	k, ok := m.Keys[verkey]
	if !ok {
		return nil, mlerr.ErrUnknownKey
	}

	return crypto.Sign(k.Secret, msg)
}

// MockVerifier mocks signature verification. Every signature is reported as Valid
// unless VerifyErr is set.
type MockVerifier struct {
	Valid     bool
	VerifyErr error
}

// Verify mocks verifying sig over msg under verkey
func (m *MockVerifier) Verify(verkey string, msg, sig []byte) (bool, error) {
	if m.VerifyErr != nil {
		return false, m.VerifyErr
	}

	return m.Valid, nil
}
