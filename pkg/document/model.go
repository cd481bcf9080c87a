/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package document renders the DID document of a microledger in the W3C DID Core shape.
//
// Documents are kept as JSON-LD objects (maps) with typed accessors, so a rendered document
// and one parsed back from JSON read the same way.
package document

import (
	"encoding/json"
)

// Property names of DID documents, verification methods and services.
const (
	IDProperty                 = "id"
	ContextProperty            = "@context"
	TypeProperty               = "type"
	ControllerProperty         = "controller"
	VerificationMethodProperty = "verificationMethod"
	AuthenticationProperty     = "authentication"
	DelegationKeyProperty      = "capabilityDelegation"
	ServiceProperty            = "service"

	PublicKeyBase58Property    = "publicKeyBase58"
	PublicKeyMultibaseProperty = "publicKeyMultibase"
	PublicKeyJwkProperty       = "publicKeyJwk"
	// AuthorizationsProperty lists the microledger authorization flags of a key.
	AuthorizationsProperty = "authorizations"

	ServiceEndpointProperty = "serviceEndpoint"
	RecipientKeysProperty   = "recipientKeys"
)

// DIDDocument is the rendered DID document of a microledger.
type DIDDocument map[string]interface{}

// DidDocumentFromBytes parses a DID document.
func DidDocumentFromBytes(data []byte) (DIDDocument, error) {
	doc := make(DIDDocument)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// ID is the fully qualified DID.
func (doc DIDDocument) ID() string {
	return str(doc[IDProperty])
}

// Context is the JSON-LD context.
func (doc DIDDocument) Context() []interface{} {
	list, _ := doc[ContextProperty].([]interface{})

	return list
}

// VerificationMethods are the active keys of the DID.
func (doc DIDDocument) VerificationMethods() []PublicKey {
	var keys []PublicKey
	for _, o := range objects(doc[VerificationMethodProperty]) {
		keys = append(keys, o)
	}

	return keys
}

// Services are the agent endpoints of the DID.
func (doc DIDDocument) Services() []Service {
	var services []Service
	for _, o := range objects(doc[ServiceProperty]) {
		services = append(services, o)
	}

	return services
}

// Authentications returns the ids of the keys that may authenticate as the DID.
func (doc DIDDocument) Authentications() []string {
	return strs(doc[AuthenticationProperty])
}

// DelegationKeys returns the ids of the keys that may grant keys to the DID.
func (doc DIDDocument) DelegationKeys() []string {
	return strs(doc[DelegationKeyProperty])
}

// JSONLdObject returns map that represents JSON LD Object.
func (doc DIDDocument) JSONLdObject() map[string]interface{} {
	return doc
}

// Bytes returns the JSON of the document.
func (doc DIDDocument) Bytes() ([]byte, error) {
	return json.Marshal(doc)
}

// PublicKey is a verification method.
type PublicKey map[string]interface{}

// ID is the DID URL of the key.
func (pk PublicKey) ID() string { return str(pk[IDProperty]) }

// Type is the verification method type.
func (pk PublicKey) Type() string { return str(pk[TypeProperty]) }

// Controller is the DID controlling the key.
func (pk PublicKey) Controller() string { return str(pk[ControllerProperty]) }

// PublicKeyBase58 is the verkey.
func (pk PublicKey) PublicKeyBase58() string { return str(pk[PublicKeyBase58Property]) }

// PublicKeyMultibase is the multicodec prefixed key in multibase.
func (pk PublicKey) PublicKeyMultibase() string { return str(pk[PublicKeyMultibaseProperty]) }

// Authorizations returns the authorization flags of the key.
func (pk PublicKey) Authorizations() []string { return strs(pk[AuthorizationsProperty]) }

// PublicKeyJwk is the key as a JWK, nil if absent.
func (pk PublicKey) PublicKeyJwk() JWK {
	m, ok := pk[PublicKeyJwkProperty].(map[string]interface{})
	if !ok {
		return nil
	}

	return m
}

// JSONLdObject returns map that represents JSON LD Object.
func (pk PublicKey) JSONLdObject() map[string]interface{} {
	return pk
}

// Service is an agent endpoint.
type Service map[string]interface{}

// ID is the DID URL of the service.
func (s Service) ID() string { return str(s[IDProperty]) }

// Type is the service type.
func (s Service) Type() string { return str(s[TypeProperty]) }

// Endpoint is the agent address.
func (s Service) Endpoint() string { return str(s[ServiceEndpointProperty]) }

// RecipientKeys are the verkeys behind the endpoint.
func (s Service) RecipientKeys() []string { return strs(s[RecipientKeysProperty]) }

func str(v interface{}) string {
	s, _ := v.(string)

	return s
}

func strs(v interface{}) []string {
	var result []string

	list, _ := v.([]interface{})
	for _, e := range list {
		if s, ok := e.(string); ok {
			result = append(result, s)
		}
	}

	return result
}

func objects(v interface{}) []map[string]interface{} {
	var result []map[string]interface{}

	list, _ := v.([]interface{})
	for _, e := range list {
		if m, ok := e.(map[string]interface{}); ok {
			result = append(result, m)
		}
	}

	return result
}
