/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package merkle implements an append-only log with a running Merkle root.
//
// Leaves are SHA-256(0x00 || entry) and interior nodes SHA-256(0x01 || left || right),
// with the tree shape of RFC 6962. The root of an empty log is SHA-256 of the empty string.
package merkle

import (
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/storage"
)

// Log is a Merkle log backed by an ordered log. Leaf hashes are kept in memory.
type Log struct {
	mutex  sync.RWMutex
	store  storage.OrderedLog
	leaves [][]byte
	root   []byte
}

// New loads the log kept in store.
func New(store storage.OrderedLog) (*Log, error) {
	size, err := store.Size()
	if err != nil {
		return nil, err
	}

	entries, err := store.Get(1, size)
	if err != nil {
		return nil, err
	}

	leaves := make([][]byte, len(entries))
	for i, e := range entries {
		leaves[i] = LeafHash(e)
	}

	return &Log{
		store:  store,
		leaves: leaves,
		root:   RootOf(leaves),
	}, nil
}

// Size returns the number of entries.
func (l *Log) Size() uint64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return uint64(len(l.leaves))
}

// Append appends one entry and returns its sequence number.
func (l *Log) Append(entry []byte) (uint64, error) {
	return l.AppendBatch([][]byte{entry})
}

// AppendBatch appends all entries or none of them and returns the sequence number of the last one.
func (l *Log) AppendBatch(entries [][]byte) (uint64, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if len(entries) == 0 {
		return uint64(len(l.leaves)), nil
	}

	if err := l.store.Append(entries...); err != nil {
		return 0, err
	}

	for _, e := range entries {
		l.leaves = append(l.leaves, LeafHash(e))
	}

	l.root = RootOf(l.leaves)

	return uint64(len(l.leaves)), nil
}

// Get returns the entries in [from, to] (1-based, inclusive).
func (l *Log) Get(from, to uint64) ([][]byte, error) {
	return l.store.Get(from, to)
}

// Root returns the hex encoded root.
func (l *Log) Root() string {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return hex.EncodeToString(l.root)
}

// RootBytes returns the raw root.
func (l *Log) RootBytes() []byte {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return append([]byte(nil), l.root...)
}

// RootAt returns the hex encoded root of the first n entries.
func (l *Log) RootAt(n uint64) (string, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if n > uint64(len(l.leaves)) {
		return "", errors.Wrapf(mlerr.ErrOutOfRange, "root at %d of log with size %d", n, len(l.leaves))
	}

	return hex.EncodeToString(RootOf(l.leaves[:n])), nil
}

// ProspectiveRoot returns the hex encoded root the log would have after appending entries.
// The log is not modified.
func (l *Log) ProspectiveRoot(entries [][]byte) string {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	leaves := make([][]byte, len(l.leaves), len(l.leaves)+len(entries))
	copy(leaves, l.leaves)

	for _, e := range entries {
		leaves = append(leaves, LeafHash(e))
	}

	return hex.EncodeToString(RootOf(leaves))
}

// LeafHashAt returns the leaf hash of the entry at seq.
func (l *Log) LeafHashAt(seq uint64) ([]byte, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if seq < 1 || seq > uint64(len(l.leaves)) {
		return nil, errors.Wrapf(mlerr.ErrOutOfRange, "leaf %d of log with size %d", seq, len(l.leaves))
	}

	return l.leaves[seq-1], nil
}

// InclusionProof returns the audit path of the entry at seq in the tree of the first size entries.
func (l *Log) InclusionProof(seq, size uint64) ([][]byte, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if size > uint64(len(l.leaves)) || seq < 1 || seq > size {
		return nil, errors.Wrapf(mlerr.ErrOutOfRange, "inclusion of %d in tree of size %d (log size %d)",
			seq, size, len(l.leaves))
	}

	return inclusionPath(seq-1, l.leaves[:size]), nil
}

// ConsistencyProof returns the proof that the tree of the first m entries is a prefix of
// the tree of the first n entries.
func (l *Log) ConsistencyProof(m, n uint64) ([][]byte, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if n > uint64(len(l.leaves)) || m > n {
		return nil, errors.Wrapf(mlerr.ErrOutOfRange, "consistency between %d and %d (log size %d)",
			m, n, len(l.leaves))
	}

	if m == 0 || m == n {
		return nil, nil
	}

	return consistencyPath(m, l.leaves[:n], true), nil
}
