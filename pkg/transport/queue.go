/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"sync"
)

// Envelope is a message addressed to a peer.
type Envelope struct {
	To  string
	Msg string
}

// Queue is an in-memory FIFO of envelopes.
type Queue struct {
	items []*Envelope
	mutex sync.RWMutex
}

// Add adds the given envelope to the tail of the queue and returns the new length of the queue.
func (q *Queue) Add(e *Envelope) uint {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.items = append(q.items, e)

	return uint(len(q.items))
}

// Peek returns (up to) the given number of envelopes from the head of the queue but does not remove them.
func (q *Queue) Peek(num uint) []*Envelope {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	n := int(num)
	if len(q.items) < n {
		n = len(q.items)
	}

	items := make([]*Envelope, n)
	copy(items, q.items[0:n])

	return items
}

// Remove removes (up to) the given number of envelopes from the head of the queue.
// Returns the removed envelopes and the new length of the queue.
func (q *Queue) Remove(num uint) ([]*Envelope, uint) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	n := int(num)
	if len(q.items) < n {
		n = len(q.items)
	}

	items := q.items[0:n]
	q.items = q.items[n:]

	return items, uint(len(q.items))
}

// Len returns the length of the queue.
func (q *Queue) Len() uint {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	return uint(len(q.items))
}
