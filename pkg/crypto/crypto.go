/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package crypto provides the Ed25519 primitives used by microledgers.
// Verkeys and signatures travel base58 encoded.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/util/edsigner"
)

// SeedSize is the size of a key seed.
const SeedSize = ed25519.SeedSize

// KeyInfo holds a created key pair.
type KeyInfo struct {
	Verkey string
	Secret ed25519.PrivateKey
}

// CreateKey creates a key pair. An empty seed creates a random key, otherwise the
// seed must be exactly 32 bytes.
func CreateKey(seed string) (*KeyInfo, error) {
	var seedBytes []byte

	if seed == "" {
		seedBytes = make([]byte, SeedSize)
		if _, err := rand.Read(seedBytes); err != nil {
			return nil, errors.Wrap(err, "generate seed")
		}
	} else {
		seedBytes = []byte(seed)
	}

	if len(seedBytes) != SeedSize {
		return nil, errors.Errorf("seed must be %d bytes, got %d", SeedSize, len(seedBytes))
	}

	secret := ed25519.NewKeyFromSeed(seedBytes)

	verkey, err := edsigner.New(secret).Verkey()
	if err != nil {
		return nil, err
	}

	return &KeyInfo{Verkey: verkey, Secret: secret}, nil
}

// Sign signs msg with the secret key.
func Sign(secret ed25519.PrivateKey, msg []byte) ([]byte, error) {
	return edsigner.New(secret).Sign(msg)
}

// DecodeVerkey decodes a base58 verkey.
func DecodeVerkey(verkey string) (ed25519.PublicKey, error) {
	pub := base58.Decode(verkey)
	if len(pub) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(mlerr.ErrUnknownKey, "verkey [%s] is not a base58 encoded Ed25519 public key", verkey)
	}

	return pub, nil
}

// Verify verifies sig over msg under verkey. An error is returned only for a malformed verkey.
func Verify(verkey string, msg, sig []byte) (bool, error) {
	pub, err := DecodeVerkey(verkey)
	if err != nil {
		return false, err
	}

	if len(sig) != ed25519.SignatureSize {
		return false, nil
	}

	return ed25519.Verify(pub, msg, sig), nil
}

// Service exposes the package functions as a verifier.
type Service struct{}

// New returns the crypto service.
func New() *Service {
	return &Service{}
}

// Verify verifies sig over msg under verkey.
func (s *Service) Verify(verkey string, msg, sig []byte) (bool, error) {
	return Verify(verkey, msg, sig)
}
