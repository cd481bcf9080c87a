/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package storage defines the ordered log abstraction persisted microledgers are kept in.
package storage

import (
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
)

// OrderedLog is an append-only sequence of byte items addressed by 1-based position.
type OrderedLog interface {
	// Append appends all items or none of them.
	Append(items ...[]byte) error

	// Get returns the items in the inclusive range [from, to].
	Get(from, to uint64) ([][]byte, error)

	// Size returns the number of items.
	Size() (uint64, error)
}

// Provider opens named ordered logs.
type Provider interface {
	OpenLog(name string) (OrderedLog, error)
	Close() error
}

// LogName returns the storage name of the log for a DID under an agent path.
func LogName(agentPath, did string) string {
	if agentPath == "" {
		return did
	}

	return agentPath + "/" + did
}

// CheckRange validates a read of [from, to] against a log of the given size.
// from may be one past to, which denotes an empty range.
func CheckRange(from, to, size uint64) error {
	if from < 1 || to > size || from > to+1 {
		return errors.Wrapf(mlerr.ErrOutOfRange, "range [%d, %d] of log with size %d", from, to, size)
	}

	return nil
}
