/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

import (
	"crypto/ed25519"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/square/go-jose/v3"
)

// JWK is a public key in JWK format.
type JWK map[string]interface{}

// NewEd25519JWK returns the OKP JWK of an Ed25519 public key.
func NewEd25519JWK(pub ed25519.PublicKey) (JWK, error) {
	b, err := (&jose.JSONWebKey{Key: pub}).MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "marshal JWK")
	}

	jwk := make(JWK)
	if err := json.Unmarshal(b, &jwk); err != nil {
		return nil, errors.Wrap(err, "unmarshal JWK")
	}

	return jwk, nil
}

// Kty is the key type, OKP for Ed25519.
func (jwk JWK) Kty() string { return str(jwk["kty"]) }

// Crv is the curve.
func (jwk JWK) Crv() string { return str(jwk["crv"]) }

// X is the base64url public key.
func (jwk JWK) X() string { return str(jwk["x"]) }

// Ed25519PublicKey parses the JWK back into an Ed25519 public key.
func (jwk JWK) Ed25519PublicKey() (ed25519.PublicKey, error) {
	b, err := json.Marshal(jwk)
	if err != nil {
		return nil, err
	}

	var key jose.JSONWebKey
	if err := key.UnmarshalJSON(b); err != nil {
		return nil, errors.Wrap(err, "parse JWK")
	}

	pub, ok := key.Key.(ed25519.PublicKey)
	if !ok {
		return nil, errors.Errorf("JWK is not an Ed25519 public key: %T", key.Key)
	}

	return pub, nil
}
