/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txnbuilder

import "github.com/trustbloc/microledger-go/pkg/api/txn"

var defaultBuilder = New()

// BuildNymTxn builds a Nym txn with the default versions.
func BuildNymTxn(dest, verkey string) (string, error) {
	return defaultBuilder.BuildNymTxn(dest, verkey)
}

// BuildKeyTxn builds a Key txn with the default versions.
func BuildKeyTxn(verkey string, authorizations []txn.AuthzFlag) (string, error) {
	return defaultBuilder.BuildKeyTxn(verkey, authorizations)
}

// BuildEndpointTxn builds an Endpoint txn with the default versions.
func BuildEndpointTxn(verkey, address string) (string, error) {
	return defaultBuilder.BuildEndpointTxn(verkey, address)
}
