/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package merkle

import (
	"crypto/sha256"
)

const (
	leafPrefix = 0x00
	nodePrefix = 0x01
)

// EmptyRoot is the root of a tree with no leaves: SHA-256 of the empty string.
var EmptyRoot = func() []byte {
	h := sha256.Sum256(nil)

	return h[:]
}()

// LeafHash returns the hash of a leaf entry.
func LeafHash(data []byte) []byte {
	h := sha256.New()
	h.Write([]byte{leafPrefix}) //nolint:errcheck
	h.Write(data)               //nolint:errcheck

	return h.Sum(nil)
}

// NodeHash returns the hash of an interior node.
func NodeHash(left, right []byte) []byte {
	h := sha256.New()
	h.Write([]byte{nodePrefix}) //nolint:errcheck
	h.Write(left)               //nolint:errcheck
	h.Write(right)              //nolint:errcheck

	return h.Sum(nil)
}

// RootOf returns the root over the given leaf hashes. The left subtree of a node
// holds the largest power of two leaves smaller than the total.
func RootOf(leaves [][]byte) []byte {
	switch len(leaves) {
	case 0:
		return EmptyRoot
	case 1:
		return leaves[0]
	}

	k := splitPoint(uint64(len(leaves)))

	return NodeHash(RootOf(leaves[:k]), RootOf(leaves[k:]))
}

// splitPoint returns the largest power of two smaller than n (n > 1).
func splitPoint(n uint64) uint64 {
	k := uint64(1)
	for k<<1 < n {
		k <<= 1
	}

	return k
}
