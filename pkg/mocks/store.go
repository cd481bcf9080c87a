/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"fmt"
	"sync"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/storage"
)

// MockOrderedLog mocks an ordered log for testing purposes.
type MockOrderedLog struct {
	sync.RWMutex
	items     [][]byte
	AppendErr error
	GetErr    error
	SizeErr   error
}

// NewMockOrderedLog creates mock ordered log
func NewMockOrderedLog() *MockOrderedLog {
	return &MockOrderedLog{}
}

// Append mocks appending items
func (m *MockOrderedLog) Append(items ...[]byte) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}

	m.Lock()
	defer m.Unlock()

	m.items = append(m.items, items...)

	return nil
}

// Get mocks retrieving items
func (m *MockOrderedLog) Get(from, to uint64) ([][]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	m.RLock()
	defer m.RUnlock()

	if err := storage.CheckRange(from, to, uint64(len(m.items))); err != nil {
		return nil, err
	}

	return append([][]byte(nil), m.items[from-1:to]...), nil
}

// Size mocks returning the number of items
func (m *MockOrderedLog) Size() (uint64, error) {
	if m.SizeErr != nil {
		return 0, m.SizeErr
	}

	m.RLock()
	defer m.RUnlock()

	return uint64(len(m.items)), nil
}

// MockStorageProvider mocks a storage provider that hands out mock logs.
type MockStorageProvider struct {
	sync.Mutex
	Logs     map[string]*MockOrderedLog
	OpenErr  error
	CloseErr error
}

// NewMockStorageProvider creates mock storage provider
func NewMockStorageProvider() *MockStorageProvider {
	return &MockStorageProvider{Logs: make(map[string]*MockOrderedLog)}
}

// OpenLog mocks opening a log
func (m *MockStorageProvider) OpenLog(name string) (storage.OrderedLog, error) {
	if m.OpenErr != nil {
		return nil, fmt.Errorf("%w: %s", mlerr.ErrStorage, m.OpenErr)
	}

	m.Lock()
	defer m.Unlock()

	l, ok := m.Logs[name]
	if !ok {
		l = NewMockOrderedLog()
		m.Logs[name] = l
	}

	return l, nil
}

// Close mocks closing the provider
func (m *MockStorageProvider) Close() error {
	return m.CloseErr
}
