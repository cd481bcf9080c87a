/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/api/txn"
	"github.com/trustbloc/microledger-go/pkg/crypto"
	"github.com/trustbloc/microledger-go/pkg/diddoc"
	"github.com/trustbloc/microledger-go/pkg/hashing"
	"github.com/trustbloc/microledger-go/pkg/txnbuilder"
)

const (
	did       = "75KUW8tPUQNBS4W7ibFeY8"
	verkey    = "5rArie7XKukPCaEwq5XGQJnM9Fc5aZE3M9HAPVfMU2xC"
	newVK     = "6X7FHuUPcfFm7HAqugAwpus6n9Pwk4RVjK5UtRsnGhxk"
	address   = "https://agent.example.com"
	emptyRoot = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

type ledger struct {
	doc  *diddoc.DidDoc
	size uint64
	root string
}

func (l *ledger) Size() uint64           { return l.size }
func (l *ledger) Root() string           { return l.root }
func (l *ledger) DidDoc() *diddoc.DidDoc { return l.doc }

func apply(t *testing.T, doc *diddoc.DidDoc, txns ...string) {
	t.Helper()

	for _, s := range txns {
		parsed, err := txnbuilder.Parse(s)
		require.NoError(t, err)
		require.NoError(t, doc.Apply(parsed))
	}
}

func nymTxn(t *testing.T, dest, vk string) string {
	t.Helper()

	s, err := txnbuilder.BuildNymTxn(dest, vk)
	require.NoError(t, err)

	return s
}

func keyTxn(t *testing.T, vk string, flags ...txn.AuthzFlag) string {
	t.Helper()

	s, err := txnbuilder.BuildKeyTxn(vk, flags)
	require.NoError(t, err)

	return s
}

func endpointTxn(t *testing.T, vk, addr string) string {
	t.Helper()

	s, err := txnbuilder.BuildEndpointTxn(vk, addr)
	require.NoError(t, err)

	return s
}

func genesis(t *testing.T) *diddoc.DidDoc {
	t.Helper()

	doc := diddoc.New(did)
	apply(t, doc, nymTxn(t, did, verkey))

	return doc
}

func TestRender(t *testing.T) {
	r := NewRenderer()

	t.Run("genesis key", func(t *testing.T) {
		doc, err := r.Render(genesis(t))
		require.NoError(t, err)

		require.Equal(t, "did:sov:"+did, doc.ID())
		require.Equal(t, []interface{}{ContextV1}, doc.Context())

		methods := doc.VerificationMethods()
		require.Len(t, methods, 1)

		pk := methods[0]
		require.Equal(t, "did:sov:"+did+"#"+verkey, pk.ID())
		require.Equal(t, VerificationKeyType, pk.Type())
		require.Equal(t, "did:sov:"+did, pk.Controller())
		require.Equal(t, verkey, pk.PublicKeyBase58())
		require.Equal(t, []string{"all"}, pk.Authorizations())

		pub, err := crypto.DecodeVerkey(verkey)
		require.NoError(t, err)

		enc, data, err := multibase.Decode(pk.PublicKeyMultibase())
		require.NoError(t, err)
		require.Equal(t, multibase.Encoding(multibase.Base58BTC), enc)
		require.Equal(t, append([]byte{0xed, 0x01}, pub...), data)

		jwk := pk.PublicKeyJwk()
		require.Equal(t, "OKP", jwk.Kty())
		require.Equal(t, "Ed25519", jwk.Crv())
		require.Equal(t, base64.RawURLEncoding.EncodeToString(pub), jwk.X())

		parsed, err := jwk.Ed25519PublicKey()
		require.NoError(t, err)
		require.Equal(t, pub, parsed)

		require.Equal(t, []string{pk.ID()}, doc.Authentications())
		require.Equal(t, []string{pk.ID()}, doc.DelegationKeys())
		require.Empty(t, doc.Services())
	})

	t.Run("added key and endpoint", func(t *testing.T) {
		dd := genesis(t)
		apply(t, dd,
			keyTxn(t, newVK, txn.AuthzMProx),
			endpointTxn(t, newVK, address))

		doc, err := r.Render(dd)
		require.NoError(t, err)

		id := "did:sov:" + did
		require.Equal(t, []string{id + "#" + verkey, id + "#" + newVK}, doc.Authentications())
		require.Equal(t, []string{id + "#" + verkey}, doc.DelegationKeys())

		services := doc.Services()
		require.Len(t, services, 1)
		require.Equal(t, id+"#agent-"+newVK, services[0].ID())
		require.Equal(t, AgentServiceType, services[0].Type())
		require.Equal(t, address, services[0].Endpoint())
		require.Equal(t, []string{newVK}, services[0].RecipientKeys())
	})

	t.Run("revoked key is left out", func(t *testing.T) {
		dd := genesis(t)
		apply(t, dd,
			keyTxn(t, newVK, txn.AuthzAll),
			endpointTxn(t, newVK, address),
			keyTxn(t, newVK))

		doc, err := r.Render(dd)
		require.NoError(t, err)
		require.Len(t, doc.VerificationMethods(), 1)
		require.Equal(t, verkey, doc.VerificationMethods()[0].PublicKeyBase58())
		require.Empty(t, doc.Services())
	})

	t.Run("method prefix", func(t *testing.T) {
		doc, err := NewRenderer(WithMethod("did:peer")).Render(genesis(t))
		require.NoError(t, err)
		require.Equal(t, "did:peer:"+did, doc.ID())
	})

	t.Run("malformed verkey", func(t *testing.T) {
		dd := genesis(t)
		apply(t, dd, keyTxn(t, "abc", txn.AuthzAll))

		_, err := r.Render(dd)
		require.Error(t, err)
		require.True(t, errors.Is(err, mlerr.ErrUnknownKey))
	})

	t.Run("round trip through JSON", func(t *testing.T) {
		doc, err := r.Render(genesis(t))
		require.NoError(t, err)

		b, err := doc.Bytes()
		require.NoError(t, err)

		parsed, err := DidDocumentFromBytes(b)
		require.NoError(t, err)
		require.Equal(t, doc.ID(), parsed.ID())
		require.Equal(t, doc.Authentications(), parsed.Authentications())
		require.Equal(t, verkey, parsed.VerificationMethods()[0].PublicKeyBase58())

		_, err = DidDocumentFromBytes([]byte("{"))
		require.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	r := NewRenderer()

	t.Run("success", func(t *testing.T) {
		result, err := r.Resolve(&ledger{doc: genesis(t), size: 1, root: emptyRoot})
		require.NoError(t, err)

		require.Equal(t, ResolutionContext, result.Context)
		require.Equal(t, "did:sov:"+did, result.Document.ID())
		require.Equal(t, emptyRoot, result.DocumentMetadata[MerkleRootProperty])
		require.Equal(t, uint64(1), result.DocumentMetadata[SizeProperty])
		require.Equal(t, false, result.DocumentMetadata[DeactivatedProperty])

		digest, code, err := hashing.DecodeDigest(result.DocumentMetadata[VersionIDProperty].(string))
		require.NoError(t, err)
		require.Equal(t, uint64(multihash.SHA2_256), code)
		require.Equal(t, emptyRoot, hex.EncodeToString(digest))

		b, err := json.Marshal(result)
		require.NoError(t, err)
		require.Contains(t, string(b), `"didDocumentMetadata"`)
	})

	t.Run("every key revoked", func(t *testing.T) {
		dd := genesis(t)
		apply(t, dd, keyTxn(t, verkey))

		result, err := r.Resolve(&ledger{doc: dd, size: 2, root: emptyRoot})
		require.NoError(t, err)
		require.Equal(t, true, result.DocumentMetadata[DeactivatedProperty])
	})

	t.Run("empty ledger", func(t *testing.T) {
		result, err := r.Resolve(&ledger{doc: diddoc.New(did), root: emptyRoot})
		require.NoError(t, err)
		require.Equal(t, false, result.DocumentMetadata[DeactivatedProperty])
		require.Empty(t, result.Document.VerificationMethods())
	})

	t.Run("malformed root", func(t *testing.T) {
		_, err := r.Resolve(&ledger{doc: genesis(t), size: 1, root: "zz"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "decode root")
	})
}
