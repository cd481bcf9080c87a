/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

// ResolutionResult is a DID document with the metadata of the microledger it was
// rendered from.
type ResolutionResult struct {
	Context          string      `json:"@context"`
	Document         DIDDocument `json:"didDocument"`
	DocumentMetadata Metadata    `json:"didDocumentMetadata,omitempty"`
}

// Metadata of a resolved document.
type Metadata map[string]interface{}

const (
	// VersionIDProperty is the base58 multihash of the Merkle root the document was rendered at.
	VersionIDProperty = "versionId"

	// MerkleRootProperty is the hex Merkle root.
	MerkleRootProperty = "merkleRoot"

	// SizeProperty is the number of txns in the microledger.
	SizeProperty = "size"

	// DeactivatedProperty is true once every key of a non-empty microledger was revoked.
	DeactivatedProperty = "deactivated"
)
