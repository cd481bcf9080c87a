/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txnbuilder

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/api/txn"
)

const (
	did    = "75KUW8tPUQNBS4W7ibFeY8"
	verkey = "5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC"
	seed   = "11111111111111111111111111111111"

	nymTxn      = `{"protocolVersion":1,"txnVersion":1,"operation":{"dest":"75KUW8tPUQNBS4W7ibFeY8","type":"1"}}`
	nymTxnVK    = `{"protocolVersion":1,"txnVersion":1,"operation":{"dest":"75KUW8tPUQNBS4W7ibFeY8","type":"1","verkey":"5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC"}}`
	keyTxn      = `{"protocolVersion":1,"txnVersion":1,"operation":{"authorizations":["all"],"type":"2","verkey":"5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC"}}`
	endpointTxn = `{"protocolVersion":1,"txnVersion":1,"operation":{"address":"https://agent.example.com","type":"3","verkey":"5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC"}}`

	keyTxnSig    = "4Be93xNcmaoHzUVK89Qz4aeQg9zMiC2PooegFWEY5aQEfzZo9uNgdjJJDQPj3K5Jj4gE5mERBetqLUBUu6G5cyX2"
	signedKeyTxn = `{"protocolVersion":1,"txnVersion":1,"operation":{"authorizations":["all"],"type":"2","verkey":"5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC"},"signature":{"sig":"` + keyTxnSig + `","verkey":"5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC"}}`
)

func TestBuild(t *testing.T) {
	t.Run("nym", func(t *testing.T) {
		s, err := BuildNymTxn(did, "")
		require.NoError(t, err)
		require.Equal(t, nymTxn, s)

		s, err = BuildNymTxn(did, verkey)
		require.NoError(t, err)
		require.Equal(t, nymTxnVK, s)
	})

	t.Run("key", func(t *testing.T) {
		s, err := BuildKeyTxn(verkey, []txn.AuthzFlag{txn.AuthzAll})
		require.NoError(t, err)
		require.Equal(t, keyTxn, s)
	})

	t.Run("key - flags keep caller order", func(t *testing.T) {
		s, err := BuildKeyTxn(verkey, []txn.AuthzFlag{txn.AuthzAll, txn.AuthzAddKey, txn.AuthzRemKey})
		require.NoError(t, err)
		require.Contains(t, s, `"authorizations":["all","add_key","rem_key"]`)

		parsed, err := Parse(s)
		require.NoError(t, err)
		require.Equal(t, []txn.AuthzFlag{txn.AuthzAll, txn.AuthzAddKey, txn.AuthzRemKey}, parsed.Operation.Authorizations)
	})

	t.Run("key - duplicate flags dropped", func(t *testing.T) {
		s, err := BuildKeyTxn(verkey, []txn.AuthzFlag{txn.AuthzRemKey, txn.AuthzAddKey, txn.AuthzRemKey})
		require.NoError(t, err)
		require.Contains(t, s, `"authorizations":["rem_key","add_key"]`)
	})

	t.Run("key - revoke writes empty list", func(t *testing.T) {
		s, err := BuildKeyTxn(verkey, nil)
		require.NoError(t, err)
		require.Contains(t, s, `"authorizations":[]`)

		parsed, err := Parse(s)
		require.NoError(t, err)
		require.True(t, parsed.IsRevoke())
	})

	t.Run("endpoint", func(t *testing.T) {
		s, err := BuildEndpointTxn(verkey, "https://agent.example.com")
		require.NoError(t, err)
		require.Equal(t, endpointTxn, s)
	})

	t.Run("endpoint - address is not HTML escaped", func(t *testing.T) {
		s, err := BuildEndpointTxn(verkey, "https://agent.example.com/?a=1&b=2")
		require.NoError(t, err)
		require.Contains(t, s, `"address":"https://agent.example.com/?a=1&b=2"`)
	})

	t.Run("custom versions", func(t *testing.T) {
		b := New(WithProtocolVersion(2), WithTxnVersion(3))
		require.Equal(t, 2, b.ProtocolVersion())
		require.Equal(t, 3, b.TxnVersion())

		s, err := b.BuildNymTxn(did, "")
		require.NoError(t, err)
		require.Equal(t, `{"protocolVersion":2,"txnVersion":3,"operation":{"dest":"75KUW8tPUQNBS4W7ibFeY8","type":"1"}}`, s)
	})

	t.Run("error - invalid authorization", func(t *testing.T) {
		_, err := BuildKeyTxn(verkey, []txn.AuthzFlag{"superuser"})
		require.True(t, errors.Is(err, mlerr.ErrMalformedTxn))
		require.Contains(t, err.Error(), "invalid authorization [superuser]")
	})

	t.Run("error - missing values", func(t *testing.T) {
		_, err := BuildNymTxn("", verkey)
		require.True(t, errors.Is(err, mlerr.ErrMalformedTxn))

		_, err = BuildKeyTxn("", nil)
		require.True(t, errors.Is(err, mlerr.ErrMalformedTxn))

		_, err = BuildEndpointTxn("", "addr")
		require.True(t, errors.Is(err, mlerr.ErrMalformedTxn))
	})
}

func TestParse(t *testing.T) {
	t.Run("inverse of build", func(t *testing.T) {
		for _, s := range []string{nymTxn, nymTxnVK, keyTxn, endpointTxn, signedKeyTxn} {
			parsed, err := Parse(s)
			require.NoError(t, err)

			out, err := Marshal(parsed)
			require.NoError(t, err)
			require.Equal(t, s, out)
		}
	})

	t.Run("fields", func(t *testing.T) {
		parsed, err := Parse(signedKeyTxn)
		require.NoError(t, err)
		require.Equal(t, 1, parsed.ProtocolVersion)
		require.Equal(t, 1, parsed.TxnVersion)
		require.Equal(t, txn.TypeKey, parsed.Operation.Type)
		require.Equal(t, verkey, parsed.Operation.Verkey)
		require.Equal(t, []txn.AuthzFlag{txn.AuthzAll}, parsed.Operation.Authorizations)
		require.Equal(t, verkey, parsed.SignerVerkey())
		require.Equal(t, keyTxnSig, parsed.Signature.Value)
	})

	t.Run("error - malformed", func(t *testing.T) {
		for _, s := range []string{
			``,
			`[]`,
			`"txn"`,
			`{"protocolVersion":1`,
			`{"protocolVersion":1,"txnVersion":1}`,
			`{"txnVersion":1,"operation":{"dest":"d","type":"1"}}`,
			`{"protocolVersion":"1","txnVersion":1,"operation":{"dest":"d","type":"1"}}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"dest":"d","type":"9"}}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"type":"1"}}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"verkey":"v","type":"2"}}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"authorizations":["root"],"verkey":"v","type":"2"}}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"verkey":"v","type":"3"}}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":"nym"}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"dest":"d","type":"1"},"signature":{"sig":"s"}}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"dest":"d","injected":"x","type":"1"}}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"dest":"d","type":"1"},"injected":"x"}`,
			`{"protocolVersion":1,"txnVersion":1,"operation":{"dest":"d","type":"1"},"signature":{"sig":"s","verkey":"v","injected":"x"}}`,
		} {
			_, err := Parse(s)
			require.Error(t, err, s)
			require.True(t, errors.Is(err, mlerr.ErrMalformedTxn), s)
		}
	})
}

func TestSignature(t *testing.T) {
	privateKey := ed25519.NewKeyFromSeed([]byte(seed))

	t.Run("signing input of unsigned txn is the txn itself", func(t *testing.T) {
		input, err := SigningInput(keyTxn)
		require.NoError(t, err)
		require.Equal(t, keyTxn, string(input))
	})

	t.Run("sign and attach", func(t *testing.T) {
		input, err := SigningInput(keyTxn)
		require.NoError(t, err)

		sig := ed25519.Sign(privateKey, input)
		require.Equal(t, keyTxnSig, base58.Encode(sig))

		signed, err := AddSignature(keyTxn, verkey, sig)
		require.NoError(t, err)
		require.Equal(t, signedKeyTxn, signed)

		again, err := AddSignature(signed, verkey, sig)
		require.NoError(t, err)
		require.Equal(t, signed, again)

		input, err = SigningInput(signed)
		require.NoError(t, err)
		require.Equal(t, keyTxn, string(input))

		parsed, err := Parse(signed)
		require.NoError(t, err)

		sigBytes, err := SignatureBytes(parsed)
		require.NoError(t, err)
		require.Equal(t, sig, sigBytes)
	})

	t.Run("error - unsigned txn has no signature bytes", func(t *testing.T) {
		parsed, err := Parse(keyTxn)
		require.NoError(t, err)

		_, err = SignatureBytes(parsed)
		require.True(t, errors.Is(err, mlerr.ErrInvalidSignature))
	})

	t.Run("error - attach to malformed txn", func(t *testing.T) {
		_, err := AddSignature("{}", verkey, []byte("sig"))
		require.True(t, errors.Is(err, mlerr.ErrMalformedTxn))

		_, err = AddSignature(keyTxn, "", []byte("sig"))
		require.True(t, errors.Is(err, mlerr.ErrMalformedTxn))

		_, err = AddSignature(keyTxn, verkey, nil)
		require.True(t, errors.Is(err, mlerr.ErrMalformedTxn))

		_, err = SigningInput("not json")
		require.True(t, errors.Is(err, mlerr.ErrMalformedTxn))
	})
}
