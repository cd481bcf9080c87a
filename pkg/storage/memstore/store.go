/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package memstore is an in-memory storage provider.
package memstore

import (
	"sync"

	"github.com/trustbloc/microledger-go/pkg/storage"
)

// Provider keeps logs in memory. Opening the same name twice returns the same log.
type Provider struct {
	mutex sync.Mutex
	logs  map[string]*Log
}

// New returns an in-memory provider.
func New() *Provider {
	return &Provider{logs: make(map[string]*Log)}
}

// OpenLog opens (creating if necessary) the named log.
func (p *Provider) OpenLog(name string) (storage.OrderedLog, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	l, ok := p.logs[name]
	if !ok {
		l = &Log{}
		p.logs[name] = l
	}

	return l, nil
}

// Close is a no-op; contents stay available to subsequent opens.
func (p *Provider) Close() error {
	return nil
}

// Log is an in-memory ordered log.
type Log struct {
	sync.RWMutex
	items [][]byte
}

// Append appends copies of the items.
func (l *Log) Append(items ...[]byte) error {
	l.Lock()
	defer l.Unlock()

	for _, item := range items {
		l.items = append(l.items, append([]byte(nil), item...))
	}

	return nil
}

// Get returns copies of the items in [from, to].
func (l *Log) Get(from, to uint64) ([][]byte, error) {
	l.RLock()
	defer l.RUnlock()

	if err := storage.CheckRange(from, to, uint64(len(l.items))); err != nil {
		return nil, err
	}

	result := make([][]byte, 0, to+1-from)
	for _, item := range l.items[from-1 : to] {
		result = append(result, append([]byte(nil), item...))
	}

	return result, nil
}

// Size returns the number of items.
func (l *Log) Size() (uint64, error) {
	l.RLock()
	defer l.RUnlock()

	return uint64(len(l.items)), nil
}
