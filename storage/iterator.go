// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// Direction - iteration order
type Direction int

// the directions
const (
	Forward Direction = iota
	Reverse
)

// Iterator - ordered key/value sequence
//
// Key and Value return copies that remain valid after Next
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

// Element - a key and its value
type Element struct {
	Key   []byte
	Value []byte
}

// Collect - read up to count elements from an iterator and release it,
// count <= 0 means no limit
func Collect(it Iterator, count int) ([]Element, error) {
	defer it.Release()

	elements := make([]Element, 0)
	for it.Next() {
		elements = append(elements, Element{Key: it.Key(), Value: it.Value()})
		if count > 0 && len(elements) >= count {
			break
		}
	}
	return elements, it.Error()
}

// the range of keys for a prefix and an optional starting point
func searchRange(prefix []byte, start []byte, direction Direction) *ldb_util.Range {
	r := ldb_util.BytesPrefix(prefix)
	if 0 == len(prefix) {
		r = &ldb_util.Range{}
	}
	if nil == start {
		return r
	}

	switch direction {
	case Reverse:
		// everything <= start
		limit := append(append([]byte{}, start...), 0x00)
		if nil == r.Limit || bytes.Compare(limit, r.Limit) < 0 {
			r.Limit = limit
		}
	default:
		if bytes.Compare(start, r.Start) > 0 {
			r.Start = append([]byte{}, start...)
		}
	}
	return r
}

type iterable interface {
	NewIterator(slice *ldb_util.Range, ro *ldb_opt.ReadOptions) iterator.Iterator
}

type levelIterator struct {
	it        iterator.Iterator
	direction Direction
	started   bool
}

func newLevelIterator(source iterable, prefix []byte, start []byte, direction Direction) Iterator {
	return &levelIterator{
		it:        source.NewIterator(searchRange(prefix, start, direction), nil),
		direction: direction,
	}
}

func (l *levelIterator) Next() bool {
	if !l.started {
		l.started = true
		if Reverse == l.direction {
			return l.it.Last()
		}
		return l.it.First()
	}
	if Reverse == l.direction {
		return l.it.Prev()
	}
	return l.it.Next()
}

func (l *levelIterator) Key() []byte {
	return append([]byte{}, l.it.Key()...)
}

func (l *levelIterator) Value() []byte {
	return append([]byte{}, l.it.Value()...)
}

func (l *levelIterator) Error() error {
	return wrap(l.it.Error())
}

func (l *levelIterator) Release() {
	l.it.Release()
}

// overlays pending batch operations on an underlying iterator, both
// in the same order; a pending entry replaces or hides the base entry
// with the same key
type mergeIterator struct {
	base      Iterator
	pending   []pendingEntry
	position  int
	direction Direction

	started   bool
	baseValid bool
	baseKey   []byte

	key   []byte
	value []byte
}

func (m *mergeIterator) advanceBase() {
	m.baseValid = m.base.Next()
	if m.baseValid {
		m.baseKey = m.base.Key()
	}
}

func (m *mergeIterator) Next() bool {
	if !m.started {
		m.started = true
		m.advanceBase()
	}

	for {
		havePending := m.position < len(m.pending)
		if !havePending && !m.baseValid {
			return false
		}

		if havePending {
			p := m.pending[m.position]
			c := -1
			if m.baseValid {
				c = bytes.Compare(p.key, m.baseKey)
				if Reverse == m.direction {
					c = -c
				}
			}
			if c <= 0 {
				m.position += 1
				if 0 == c {
					m.advanceBase()
				}
				if dbDelete == p.op {
					continue
				}
				m.key = p.key
				m.value = p.value
				return true
			}
		}

		m.key = m.baseKey
		m.value = m.base.Value()
		m.advanceBase()
		return true
	}
}

func (m *mergeIterator) Key() []byte {
	return append([]byte{}, m.key...)
}

func (m *mergeIterator) Value() []byte {
	return append([]byte{}, m.value...)
}

func (m *mergeIterator) Error() error {
	return m.base.Error()
}

func (m *mergeIterator) Release() {
	m.base.Release()
}
