/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package edsigner

import (
	"crypto/ed25519"
	"errors"

	"github.com/btcsuite/btcutil/base58"
)

// Signer signs with one Ed25519 key.
type Signer struct {
	privateKey ed25519.PrivateKey
}

// New returns ED25519 signer.
func New(privKey ed25519.PrivateKey) *Signer {
	return &Signer{privateKey: privKey}
}

// Verkey returns the base58 encoded public key of the signer.
func (signer *Signer) Verkey() (string, error) {
	if l := len(signer.privateKey); l != ed25519.PrivateKeySize {
		return "", errors.New("invalid private key size")
	}

	pub, ok := signer.privateKey.Public().(ed25519.PublicKey)
	if !ok {
		return "", errors.New("unexpected public key type")
	}

	return base58.Encode(pub), nil
}

// Sign signs msg and returns signature value.
func (signer *Signer) Sign(msg []byte) ([]byte, error) {
	if l := len(signer.privateKey); l != ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}

	return ed25519.Sign(signer.privateKey, msg), nil
}
