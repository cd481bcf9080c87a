/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package boltstore is a persistent storage provider on bbolt. All logs share one
// database file; each log is a sub-bucket keyed by big-endian sequence numbers.
package boltstore

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bbolt "go.etcd.io/bbolt"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/storage"
)

var logger = log.New("microledger-boltstore")

var rootBucket = []byte("microledgers")

const openTimeout = 5 * time.Second

// Provider stores logs in a bbolt database.
type Provider struct {
	db *bbolt.DB
}

// New opens (creating if necessary) the database at path.
func New(path string) (*Provider, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, errors.Wrapf(mlerr.ErrStorage, "open bolt database [%s]: %s", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(rootBucket)

		return e
	})
	if err != nil {
		if e := db.Close(); e != nil {
			logger.Warn("Failed to close bolt database", log.WithPath(path), log.WithError(e))
		}

		return nil, errors.Wrapf(mlerr.ErrStorage, "create root bucket: %s", err)
	}

	logger.Debug("Opened bolt database", log.WithPath(path))

	return &Provider{db: db}, nil
}

// OpenLog opens (creating if necessary) the named log.
func (p *Provider) OpenLog(name string) (storage.OrderedLog, error) {
	err := p.db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(name))

		return e
	})
	if err != nil {
		return nil, errors.Wrapf(mlerr.ErrStorage, "create bucket for log [%s]: %s", name, err)
	}

	return &Log{db: p.db, name: []byte(name)}, nil
}

// Close closes the database.
func (p *Provider) Close() error {
	if err := p.db.Close(); err != nil {
		return errors.Wrapf(mlerr.ErrStorage, "close bolt database: %s", err)
	}

	return nil
}

// Log is an ordered log stored in a bbolt bucket.
type Log struct {
	db   *bbolt.DB
	name []byte
}

func (l *Log) bucket(tx *bbolt.Tx) *bbolt.Bucket {
	return tx.Bucket(rootBucket).Bucket(l.name)
}

// Append appends items in one bolt transaction.
func (l *Log) Append(items ...[]byte) error {
	err := l.db.Update(func(tx *bbolt.Tx) error {
		b := l.bucket(tx)
		if b == nil {
			return errors.Errorf("bucket not found")
		}

		size := lastSeq(b)

		for i, item := range items {
			if err := b.Put(seqKey(size+uint64(i)+1), item); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(mlerr.ErrStorage, "append to log [%s]: %s", l.name, err)
	}

	return nil
}

// Get returns the items in [from, to].
func (l *Log) Get(from, to uint64) ([][]byte, error) {
	var result [][]byte

	err := l.db.View(func(tx *bbolt.Tx) error {
		b := l.bucket(tx)
		if b == nil {
			return errors.Wrapf(mlerr.ErrStorage, "bucket not found for log [%s]", l.name)
		}

		if err := storage.CheckRange(from, to, lastSeq(b)); err != nil {
			return err
		}

		result = make([][]byte, 0, to+1-from)

		c := b.Cursor()
		for k, v := c.Seek(seqKey(from)); k != nil && binary.BigEndian.Uint64(k) <= to; k, v = c.Next() {
			// values are only valid during the transaction
			result = append(result, append([]byte(nil), v...))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Size returns the number of items.
func (l *Log) Size() (uint64, error) {
	var size uint64

	err := l.db.View(func(tx *bbolt.Tx) error {
		b := l.bucket(tx)
		if b == nil {
			return errors.Wrapf(mlerr.ErrStorage, "bucket not found for log [%s]", l.name)
		}

		size = lastSeq(b)

		return nil
	})

	return size, err
}

// lastSeq returns the highest sequence number in the bucket, which equals its size
// since keys are contiguous from 1.
func lastSeq(b *bbolt.Bucket) uint64 {
	k, _ := b.Cursor().Last()
	if k == nil {
		return 0
	}

	return binary.BigEndian.Uint64(k)
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)

	return key
}
