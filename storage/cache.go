// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"sort"

	cache "github.com/patrickmn/go-cache"
)

type dbOperation int

const (
	dbPut dbOperation = iota
	dbDelete
)

// pending writes of a batch, keyed by the string form of the key
type dbCache struct {
	cache *cache.Cache
}

type cacheData struct {
	op    dbOperation
	value []byte
}

type pendingEntry struct {
	key   []byte
	value []byte
	op    dbOperation
}

// entries live until the batch ends
func newCache() *dbCache {
	return &dbCache{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Get - value and true for a pending put, nil and true for a pending
// delete, false if the key has no pending operation
func (c *dbCache) Get(key string) ([]byte, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	data := obj.(cacheData)
	if dbDelete == data.op {
		return nil, true
	}
	return data.value, true
}

func (c *dbCache) Set(op dbOperation, key string, value []byte) {
	cached := cacheData{
		op:    op,
		value: value,
	}
	c.cache.Set(key, cached, cache.NoExpiration)
}

func (c *dbCache) Count() int {
	return c.cache.ItemCount()
}

func (c *dbCache) Clear() {
	c.cache.Flush()
}

// pending operations inside a key range in iteration order
func (c *dbCache) entries(prefix []byte, start []byte, direction Direction) []pendingEntry {
	entries := make([]pendingEntry, 0)
	for k, item := range c.cache.Items() {
		key := []byte(k)
		if !bytes.HasPrefix(key, prefix) {
			continue
		}
		if nil != start {
			cmp := bytes.Compare(key, start)
			if (Forward == direction && cmp < 0) || (Reverse == direction && cmp > 0) {
				continue
			}
		}
		data := item.Object.(cacheData)
		entries = append(entries, pendingEntry{
			key:   key,
			value: data.value,
			op:    data.op,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		less := bytes.Compare(entries[i].key, entries[j].key) < 0
		if Reverse == direction {
			return !less
		}
		return less
	})
	return entries
}
