// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"github.com/bitmark-inc/cellindexd/counter"
)

// DefaultQueueSize - for NewQueue callers without a preference
const DefaultQueueSize = 1000

// Message - one queued item and its originator
type Message struct {
	From string
	Item interface{}
}

// Queue - a bounded queue; senders never block
type Queue struct {
	queue   chan Message
	dropped counter.Counter
}

// NewQueue - create a queue holding up to size messages
func NewQueue(size int) *Queue {
	return &Queue{
		queue: make(chan Message, size),
	}
}

// Send - queue data, false if the queue was full and it was dropped
func (q *Queue) Send(from string, item interface{}) bool {
	select {
	case q.queue <- Message{From: from, Item: item}:
		return true
	default:
		q.dropped.Increment()
		return false
	}
}

// Chan - channel to read from
func (q *Queue) Chan() <-chan Message {
	return q.queue
}

// Dropped - count of messages lost to a full queue
func (q *Queue) Dropped() uint64 {
	return q.dropped.Uint64()
}
