/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package edsigner

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	msg := []byte("test message")

	t.Run("success", func(t *testing.T) {
		signer := New(privateKey)

		signature, err := signer.Sign(msg)
		require.NoError(t, err)
		require.True(t, ed25519.Verify(publicKey, msg, signature))
	})

	t.Run("invalid key size", func(t *testing.T) {
		signer := New(privateKey)
		signer.privateKey = nil

		signature, err := signer.Sign(msg)
		require.Error(t, err)
		require.Nil(t, signature)
		require.Contains(t, err.Error(), "invalid private key size")
	})
}

func TestVerkey(t *testing.T) {
	t.Run("success - seeded key", func(t *testing.T) {
		signer := New(ed25519.NewKeyFromSeed([]byte("11111111111111111111111111111111")))

		verkey, err := signer.Verkey()
		require.NoError(t, err)
		require.Equal(t, "5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC", verkey)
	})

	t.Run("success - random key", func(t *testing.T) {
		publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		verkey, err := New(privateKey).Verkey()
		require.NoError(t, err)
		require.Equal(t, base58.Encode(publicKey), verkey)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := New(nil).Verkey()
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid private key size")
	})
}
