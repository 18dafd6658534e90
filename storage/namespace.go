// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"

	"github.com/bitmark-inc/cellindexd/fault"
)

// reserved for the version key
const reservedNamespace = 0x00

// Namespace - one byte prefix owned by a single index
type Namespace struct {
	id   byte
	name string
}

// NewNamespace - declare a namespace
func NewNamespace(id byte, name string) Namespace {
	return Namespace{id: id, name: name}
}

// ID - the prefix byte
func (n Namespace) ID() byte {
	return n.id
}

// Name - the owner
func (n Namespace) Name() string {
	return n.name
}

// String - for log messages
func (n Namespace) String() string {
	return fmt.Sprintf("%s(0x%02x)", n.name, n.id)
}

// Key - full database key for a key inside the namespace
func (n Namespace) Key(key []byte) []byte {
	k := make([]byte, 1+len(key))
	k[0] = n.id
	copy(k[1:], key)
	return k
}

// Reader - view of the namespace through r
func (n Namespace) Reader(r Reader) Reader {
	return &prefixReader{namespace: n, r: r}
}

// Writer - view of the namespace through w
func (n Namespace) Writer(w Writer) Writer {
	return &prefixWriter{prefixReader: prefixReader{namespace: n, r: w}, w: w}
}

// ValidateNamespaces - every id must be distinct and not reserved
func ValidateNamespaces(namespaces ...Namespace) error {
	owners := make(map[byte]string)
	for _, n := range namespaces {
		if reservedNamespace == n.id {
			return fmt.Errorf("%w: %s uses the reserved id", fault.ErrDuplicateNamespace, n)
		}
		if owner, ok := owners[n.id]; ok {
			return fmt.Errorf("%w: 0x%02x claimed by %q and %q", fault.ErrDuplicateNamespace, n.id, owner, n.name)
		}
		owners[n.id] = n.name
	}
	return nil
}

type prefixReader struct {
	namespace Namespace
	r         Reader
}

func (p *prefixReader) Get(key []byte) ([]byte, error) {
	return p.r.Get(p.namespace.Key(key))
}

func (p *prefixReader) Has(key []byte) (bool, error) {
	return p.r.Has(p.namespace.Key(key))
}

func (p *prefixReader) Iterator(prefix []byte, start []byte, direction Direction) Iterator {
	var s []byte
	if nil != start {
		s = p.namespace.Key(start)
	}
	return &prefixIterator{
		Iterator: p.r.Iterator(p.namespace.Key(prefix), s, direction),
	}
}

type prefixWriter struct {
	prefixReader
	w Writer
}

func (p *prefixWriter) Put(key []byte, value []byte) {
	p.w.Put(p.namespace.Key(key), value)
}

func (p *prefixWriter) Delete(key []byte) {
	p.w.Delete(p.namespace.Key(key))
}

// strips the namespace byte from keys
type prefixIterator struct {
	Iterator
}

func (p *prefixIterator) Key() []byte {
	return p.Iterator.Key()[1:]
}
