/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/crypto"
	"github.com/trustbloc/microledger-go/pkg/mocks"
)

const greetings = `{"type":"greetings","msg":"hey there"}`

func newKeySigner(t *testing.T) *mocks.MockSigner {
	t.Helper()

	k, err := crypto.CreateKey(seed1)
	require.NoError(t, err)

	return mocks.NewMockSigner(k)
}

func TestSignMessage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m, err := SignMessage(newKeySigner(t), did1, vk1, greetings)
		require.NoError(t, err)
		require.Equal(t, TypeMessage, m.Type)
		require.Equal(t, did1, m.ID)
		require.Equal(t, vk1, m.Verkey)
		require.Equal(t, greetings, m.Payload)

		require.NoError(t, VerifyMessage(crypto.New(), m))

		raw, err := Marshal(m)
		require.NoError(t, err)

		decoded, err := Decode(raw)
		require.NoError(t, err)
		require.NoError(t, VerifyMessage(crypto.New(), decoded.(*Message)))
	})

	t.Run("error - signer", func(t *testing.T) {
		s := newKeySigner(t)
		s.SignErr = fmt.Errorf("wallet closed")

		_, err := SignMessage(s, did1, vk1, greetings)
		require.Error(t, err)
		require.Contains(t, err.Error(), "wallet closed")

		_, err = SignMessage(newKeySigner(t), did1, newVK, greetings)
		require.True(t, errors.Is(err, mlerr.ErrUnknownKey))
	})
}

func TestVerifyMessage(t *testing.T) {
	sign := func(t *testing.T) *Message {
		m, err := SignMessage(newKeySigner(t), did1, vk1, greetings)
		require.NoError(t, err)

		return m
	}

	t.Run("error - wrong signature", func(t *testing.T) {
		m := sign(t)
		m.Signature = "4Be93xNcmaoHzUVK89Qz4aeQg9zMiC2PooegFWEY5aQEfzZo9uNgdjJJDQPj3K5Jj4gE5mERBetqLUBUu6G5cyX2"

		err := VerifyMessage(crypto.New(), m)
		require.True(t, errors.Is(err, mlerr.ErrInvalidSignature))
	})

	t.Run("error - tampered payload", func(t *testing.T) {
		m := sign(t)
		m.Payload = `{"type":"greetings","msg":"bye"}`

		err := VerifyMessage(crypto.New(), m)
		require.True(t, errors.Is(err, mlerr.ErrInvalidSignature))
	})

	t.Run("error - other verkey", func(t *testing.T) {
		m := sign(t)
		m.Verkey = newVK

		err := VerifyMessage(crypto.New(), m)
		require.True(t, errors.Is(err, mlerr.ErrInvalidSignature))
	})

	t.Run("error - signature not base58", func(t *testing.T) {
		m := sign(t)
		m.Signature = "0OIl"

		err := VerifyMessage(crypto.New(), m)
		require.True(t, errors.Is(err, mlerr.ErrInvalidSignature))
	})

	t.Run("error - malformed verkey", func(t *testing.T) {
		m := sign(t)
		m.Verkey = "abc"

		err := VerifyMessage(crypto.New(), m)
		require.True(t, errors.Is(err, mlerr.ErrUnknownKey))
	})
}
