// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/cellindexd/fault"
)

type levelBatch struct {
	store  *levelStore
	batch  *leveldb.Batch
	cache  *dbCache
	closed bool
}

func newBatch(s *levelStore) *levelBatch {
	return &levelBatch{
		store: s,
		batch: new(leveldb.Batch),
		cache: newCache(),
	}
}

// Put - buffer a write
func (b *levelBatch) Put(key []byte, value []byte) {
	b.mustBeOpen()
	v := append([]byte{}, value...)
	b.cache.Set(dbPut, string(key), v)
	b.batch.Put(key, v)
}

// Delete - buffer a delete
func (b *levelBatch) Delete(key []byte) {
	b.mustBeOpen()
	b.cache.Set(dbDelete, string(key), nil)
	b.batch.Delete(key)
}

// Get - pending value first, then committed value
func (b *levelBatch) Get(key []byte) ([]byte, error) {
	if value, found := b.cache.Get(string(key)); found {
		if nil == value {
			return nil, nil
		}
		return append([]byte{}, value...), nil
	}
	return b.store.Get(key)
}

// Has - pending state first, then committed state
func (b *levelBatch) Has(key []byte) (bool, error) {
	if value, found := b.cache.Get(string(key)); found {
		return nil != value, nil
	}
	return b.store.Has(key)
}

// Iterator - committed data merged with pending writes
func (b *levelBatch) Iterator(prefix []byte, start []byte, direction Direction) Iterator {
	return &mergeIterator{
		base:      b.store.Iterator(prefix, start, direction),
		pending:   b.cache.entries(prefix, start, direction),
		direction: direction,
	}
}

// Commit - write everything atomically and end the batch
func (b *levelBatch) Commit() error {
	if b.closed {
		return fault.ErrBatchClosed
	}
	defer b.finish()

	b.store.log.Debugf("commit: %d operations", b.batch.Len())
	return wrap(b.store.db.Write(b.batch, nil))
}

// Abort - discard everything and end the batch
func (b *levelBatch) Abort() {
	if b.closed {
		return
	}
	b.store.log.Debugf("abort: %d operations", b.batch.Len())
	b.finish()
}

func (b *levelBatch) finish() {
	b.batch.Reset()
	b.cache.Clear()
	b.closed = true
	b.store.release()
}

func (b *levelBatch) mustBeOpen() {
	if b.closed {
		fault.Panic(fault.ErrBatchClosed.Error())
	}
}
