// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scripthash - transaction locations and lock scripts by short
// hash
//
// keys:
//
//	0x40 ++ tx hash               - BE height ++ block hash
//	0x20 ++ 20 byte lock hash     - packed lock script
//	0x10 ++ BE height ++ hash     - keys first written by the block
package scripthash

import (
	"encoding/binary"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// Name - of this index
const Name = "scripthash"

// Namespace - storage prefix of this index
var Namespace = storage.NewNamespace('H', Name)

// Index - the script hash index
type Index struct {
	log *logger.L
}

// New - create the index
func New() *Index {
	return &Index{
		log: logger.New(Name),
	}
}

// Name - implements extension.Extension
func (x *Index) Name() string {
	return Name
}

// Namespace - implements extension.Extension
func (x *Index) Namespace() storage.Namespace {
	return Namespace
}

// Append - record new transactions and lock scripts
func (x *Index) Append(w storage.Writer, block *blockrecord.Block) error {
	header := &block.Header
	location := extension.AppendUint64(nil, header.Number)
	location = append(location, header.Hash[:]...)

	inserted := make([][]byte, 0)
	insert := func(key []byte, value []byte) error {
		found, err := w.Has(key)
		if nil != err || found {
			return err
		}
		w.Put(key, value)
		inserted = append(inserted, key)
		return nil
	}

	for _, tx := range block.Transactions {
		if err := insert(extension.TransactionKey(tx.Hash), location); nil != err {
			return err
		}
		for i := range tx.Outputs {
			lock := &tx.Outputs[i].Lock
			hash := lock.ShortHash()
			if err := insert(extension.ScriptHashKey(hash[:]), lock.Pack()); nil != err {
				return err
			}
		}
	}

	buffer := extension.AppendUint32(nil, uint32(len(inserted)))
	for _, key := range inserted {
		buffer = append(buffer, byte(len(key)))
		buffer = append(buffer, key...)
	}
	w.Put(extension.BlockKey(header.Number, header.Hash), buffer)

	x.log.Debugf("block: %d  inserted: %d", header.Number, len(inserted))
	return nil
}

// Rollback - delete the keys the tip inserted
func (x *Index) Rollback(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest) error {
	record, err := extension.RollbackRecord(w, tipNumber, tipHash)
	if nil != err {
		return err
	}

	d := extension.NewDecoder(record)
	n := d.Uint32()
	keys := make([][]byte, 0)
	for i := uint32(0); i < n && nil == d.Err(); i += 1 {
		keys = append(keys, d.Fixed(int(d.Uint8())))
	}
	if err := d.Finish(); nil != err {
		return err
	}

	for _, key := range keys {
		w.Delete(key)
	}
	w.Delete(extension.BlockKey(tipNumber, tipHash))

	x.log.Debugf("rollback block: %d  deleted: %d", tipNumber, len(keys))
	return nil
}

// Prune - drop old records
func (x *Index) Prune(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest, keepDepth uint64) error {
	n, err := extension.PruneBlocks(w, tipNumber, keepDepth)
	if nil != err {
		return err
	}
	x.log.Debugf("pruned: %d records below: %d", n, tipNumber)
	return nil
}

// Location - block of a transaction
type Location struct {
	Number uint64             `json:"block_number"`
	Hash   blockdigest.Digest `json:"block_hash"`
}

// Transaction - nil for an unknown hash, r is scoped to the namespace
func Transaction(r storage.Reader, hash blockdigest.Digest) (*Location, error) {
	value, err := r.Get(extension.TransactionKey(hash))
	if nil != err || nil == value {
		return nil, err
	}
	if 8+blockdigest.Length != len(value) {
		return nil, fault.ErrInvalidRecord
	}
	l := &Location{
		Number: binary.BigEndian.Uint64(value),
	}
	copy(l.Hash[:], value[8:])
	return l, nil
}

// Script - lock script by its 20 byte hash, nil if unknown
func Script(r storage.Reader, shortHash []byte) (*blockrecord.Script, error) {
	value, err := r.Get(extension.ScriptHashKey(shortHash))
	if nil != err || nil == value {
		return nil, err
	}
	return blockrecord.UnpackScript(value)
}
