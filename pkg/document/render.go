/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

import (
	"encoding/hex"
	"sort"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/txn"
	"github.com/trustbloc/microledger-go/pkg/crypto"
	"github.com/trustbloc/microledger-go/pkg/diddoc"
	"github.com/trustbloc/microledger-go/pkg/hashing"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
)

var logger = log.New("microledger-document")

const (
	// DefaultMethod prefixes the DIDs of rendered documents.
	DefaultMethod = "did:sov"

	// ContextV1 is the DID Core context.
	ContextV1 = "https://www.w3.org/ns/did/v1"

	// ResolutionContext is the context of resolution results.
	ResolutionContext = "https://w3id.org/did-resolution/v1"

	// VerificationKeyType is the type of agent keys.
	VerificationKeyType = "Ed25519VerificationKey2018"

	// AgentServiceType is the type of agent endpoints.
	AgentServiceType = "IndyAgent"
)

// multicodec ed25519-pub
var ed25519Codec = []byte{0xed, 0x01}

// Ledger is the part of a microledger needed to resolve it.
type Ledger interface {
	Size() uint64
	Root() string
	DidDoc() *diddoc.DidDoc
}

// Option configures a Renderer.
type Option func(r *Renderer)

// WithMethod sets the method prefix of rendered DIDs, e.g. "did:sov".
func WithMethod(method string) Option {
	return func(r *Renderer) {
		r.method = method
	}
}

// Renderer turns DidDocs into DID documents.
type Renderer struct {
	method string
}

// NewRenderer returns a renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{method: DefaultMethod}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ID returns the fully qualified DID.
func (r *Renderer) ID(did string) string {
	return r.method + ":" + did
}

// Render returns the DID document of doc. Revoked keys, and the endpoints of revoked
// keys, are left out.
func (r *Renderer) Render(doc *diddoc.DidDoc) (DIDDocument, error) {
	id := r.ID(doc.DID())
	keys := doc.Keys()

	methods := make([]interface{}, 0, len(keys))
	authentication := make([]interface{}, 0, len(keys))
	delegation := make([]interface{}, 0)

	for _, verkey := range activeKeys(keys) {
		pk, err := newVerificationMethod(id, verkey, keys[verkey])
		if err != nil {
			return nil, err
		}

		methods = append(methods, pk.JSONLdObject())
		authentication = append(authentication, pk.ID())

		if txn.NewAuthzSet(keys[verkey]...).Permits(txn.AuthzAddKey) {
			delegation = append(delegation, pk.ID())
		}
	}

	endpoints := doc.Endpoints()
	services := make([]interface{}, 0, len(endpoints))

	for _, verkey := range sortedKeys(endpoints) {
		if len(keys[verkey]) == 0 {
			continue
		}

		services = append(services, map[string]interface{}{
			IDProperty:              id + "#agent-" + verkey,
			TypeProperty:            AgentServiceType,
			ServiceEndpointProperty: endpoints[verkey],
			RecipientKeysProperty:   []interface{}{verkey},
		})
	}

	return DIDDocument{
		ContextProperty:            []interface{}{ContextV1},
		IDProperty:                 id,
		VerificationMethodProperty: methods,
		AuthenticationProperty:     authentication,
		DelegationKeyProperty:      delegation,
		ServiceProperty:            services,
	}, nil
}

// Resolve renders the DID document of a microledger together with its version metadata.
func (r *Renderer) Resolve(ml Ledger) (*ResolutionResult, error) {
	doc := ml.DidDoc()

	didDoc, err := r.Render(doc)
	if err != nil {
		return nil, err
	}

	root := ml.Root()

	rootBytes, err := hex.DecodeString(root)
	if err != nil {
		return nil, errors.Wrapf(err, "decode root [%s]", root)
	}

	versionID, err := hashing.EncodeDigest(multihash.SHA2_256, rootBytes)
	if err != nil {
		return nil, errors.Wrap(err, "encode version id")
	}

	size := ml.Size()

	logger.Debug("Resolved DID document", log.WithDID(doc.DID()), log.WithSize(size), log.WithRoot(root))

	return &ResolutionResult{
		Context:  ResolutionContext,
		Document: didDoc,
		DocumentMetadata: Metadata{
			VersionIDProperty:   versionID,
			MerkleRootProperty:  root,
			SizeProperty:        size,
			DeactivatedProperty: size > 0 && len(didDoc.VerificationMethods()) == 0,
		},
	}, nil
}

func newVerificationMethod(controller, verkey string, authorizations []txn.AuthzFlag) (PublicKey, error) {
	pub, err := crypto.DecodeVerkey(verkey)
	if err != nil {
		return nil, err
	}

	mb, err := multibase.Encode(multibase.Base58BTC, append(append([]byte{}, ed25519Codec...), pub...))
	if err != nil {
		return nil, errors.Wrapf(err, "multibase encode verkey [%s]", verkey)
	}

	jwk, err := NewEd25519JWK(pub)
	if err != nil {
		return nil, err
	}

	flags := make([]interface{}, len(authorizations))
	for i, a := range authorizations {
		flags[i] = string(a)
	}

	return PublicKey{
		IDProperty:                 controller + "#" + verkey,
		TypeProperty:               VerificationKeyType,
		ControllerProperty:         controller,
		PublicKeyBase58Property:    verkey,
		PublicKeyMultibaseProperty: mb,
		PublicKeyJwkProperty:       map[string]interface{}(jwk),
		AuthorizationsProperty:     flags,
	}, nil
}

func activeKeys(keys map[string][]txn.AuthzFlag) []string {
	var active []string

	for verkey, authorizations := range keys {
		if len(authorizations) > 0 {
			active = append(active, verkey)
		}
	}

	sort.Strings(active)

	return active
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
