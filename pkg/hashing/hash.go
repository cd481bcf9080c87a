/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package hashing

import (
	"crypto"
	"fmt"
	"hash"

	"github.com/btcsuite/btcutil/base58"
	"github.com/multiformats/go-multihash"
)

// GetHash calculates hash of data using hash function identified by hash
func GetHash(hash crypto.Hash, data []byte) ([]byte, error) {
	if !hash.Available() {
		return nil, fmt.Errorf("hash function not available for: %d", hash)
	}

	h := hash.New()

	if _, hashErr := h.Write(data); hashErr != nil {
		return nil, hashErr
	}

	result := h.Sum(nil)

	return result, nil
}

// GetHashFromMultihash will return hash based on specified multihash code.
func GetHashFromMultihash(multihashCode uint) (h hash.Hash, err error) {
	switch multihashCode {
	case multihash.SHA2_256:
		h = crypto.SHA256.New()
	default:
		err = fmt.Errorf("algorithm not supported, unable to compute hash")
	}

	return h, err
}

// ComputeMultihash will compute the hash for the supplied bytes using multihash code.
func ComputeMultihash(multihashCode uint, bytes []byte) ([]byte, error) {
	h, err := GetHashFromMultihash(multihashCode)
	if err != nil {
		return nil, err
	}

	if _, hashErr := h.Write(bytes); hashErr != nil {
		return nil, hashErr
	}

	return multihash.Encode(h.Sum(nil), uint64(multihashCode))
}

// EncodeDigest wraps an already computed digest (a Merkle root, for example) into a
// multihash and returns it base58 encoded.
func EncodeDigest(multihashCode uint, digest []byte) (string, error) {
	mh, err := multihash.Encode(digest, uint64(multihashCode))
	if err != nil {
		return "", err
	}

	return base58.Encode(mh), nil
}

// DecodeDigest reverses EncodeDigest and returns the raw digest and its multihash code.
func DecodeDigest(encoded string) ([]byte, uint64, error) {
	mhBytes := base58.Decode(encoded)
	if len(mhBytes) == 0 {
		return nil, 0, fmt.Errorf("invalid base58 multihash [%s]", encoded)
	}

	mh, err := multihash.Decode(mhBytes)
	if err != nil {
		return nil, 0, err
	}

	return mh.Digest, mh.Code, nil
}
