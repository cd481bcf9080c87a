/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package merkle

import (
	"bytes"
)

// inclusionPath returns the audit path of the leaf at 0-based index m.
func inclusionPath(m uint64, leaves [][]byte) [][]byte {
	n := uint64(len(leaves))
	if n <= 1 {
		return nil
	}

	k := splitPoint(n)
	if m < k {
		return append(inclusionPath(m, leaves[:k]), RootOf(leaves[k:]))
	}

	return append(inclusionPath(m-k, leaves[k:]), RootOf(leaves[:k]))
}

// consistencyPath returns the proof that the first m leaves are a prefix of leaves.
func consistencyPath(m uint64, leaves [][]byte, complete bool) [][]byte {
	n := uint64(len(leaves))
	if m == n {
		if complete {
			return nil
		}

		return [][]byte{RootOf(leaves)}
	}

	k := splitPoint(n)
	if m <= k {
		return append(consistencyPath(m, leaves[:k], complete), RootOf(leaves[k:]))
	}

	return append(consistencyPath(m-k, leaves[k:], false), RootOf(leaves[:k]))
}

// VerifyInclusion checks that leafHash sits at 1-based position seq of a tree of
// the given size with the given root.
func VerifyInclusion(leafHash []byte, seq, size uint64, proof [][]byte, root []byte) bool {
	if seq < 1 || seq > size {
		return false
	}

	fn := seq - 1
	sn := size - 1
	r := leafHash

	for _, p := range proof {
		if sn == 0 {
			return false
		}

		if fn&1 == 1 || fn == sn {
			r = NodeHash(p, r)

			for fn&1 == 0 && fn != 0 {
				fn >>= 1
				sn >>= 1
			}
		} else {
			r = NodeHash(r, p)
		}

		fn >>= 1
		sn >>= 1
	}

	return sn == 0 && bytes.Equal(r, root)
}

// VerifyConsistency checks that a tree of size first with root firstRoot is a prefix
// of a tree of size second with root secondRoot.
func VerifyConsistency(first, second uint64, firstRoot, secondRoot []byte, proof [][]byte) bool {
	switch {
	case first > second:
		return false
	case first == second:
		return len(proof) == 0 && bytes.Equal(firstRoot, secondRoot)
	case first == 0:
		return len(proof) == 0
	}

	if first&(first-1) == 0 {
		proof = append([][]byte{firstRoot}, proof...)
	}

	if len(proof) == 0 {
		return false
	}

	fn := first - 1
	sn := second - 1

	for fn&1 == 1 {
		fn >>= 1
		sn >>= 1
	}

	fr := proof[0]
	sr := proof[0]

	for _, c := range proof[1:] {
		if sn == 0 {
			return false
		}

		if fn&1 == 1 || fn == sn {
			fr = NodeHash(c, fr)
			sr = NodeHash(c, sr)

			for fn&1 == 0 && fn != 0 {
				fn >>= 1
				sn >>= 1
			}
		} else {
			sr = NodeHash(sr, c)
		}

		fn >>= 1
		sn >>= 1
	}

	return sn == 0 && bytes.Equal(fr, firstRoot) && bytes.Equal(sr, secondRoot)
}
