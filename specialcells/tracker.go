// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package specialcells - live deposit and claim cells per key hash
//
// a deposit cell belongs to the key hash in args[0:20] of its lock, a
// claim cell belongs to both the receiver args[0:20] and the sender
// args[20:40]
//
// keys:
//
//	0x00 ++ key hash              - live cells sorted by out-point
//	0x10 ++ BE height ++ hash     - packed Changes of the block
package specialcells

import (
	"bytes"
	"fmt"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// Name - of this index
const Name = "specialcells"

// Namespace - storage prefix of this index
var Namespace = storage.NewNamespace('S', Name)

// KeyHashLength - bytes in a subject
const KeyHashLength = blockdigest.ShortLength

// Tracker - the cell set index
type Tracker struct {
	log    *logger.L
	config *extension.Config
	cells  extension.CellSource
}

// New - create a tracker
func New(config *extension.Config, cells extension.CellSource) *Tracker {
	return &Tracker{
		log:    logger.New(Name),
		config: config,
		cells:  cells,
	}
}

// Name - implements extension.Extension
func (t *Tracker) Name() string {
	return Name
}

// Namespace - implements extension.Extension
func (t *Tracker) Namespace() storage.Namespace {
	return Namespace
}

// Subjects - key hashes owning a cell, none if it matches no pattern
func (t *Tracker) Subjects(cell *blockrecord.DetailedCell) [][]byte {
	lock := &cell.Output.Lock
	args := lock.Args

	switch {
	case t.config.Matches(extension.DepositLock, lock) && len(args) >= KeyHashLength:
		return [][]byte{args[:KeyHashLength]}

	case t.config.Matches(extension.ClaimLock, lock) && len(args) >= 2*KeyHashLength:
		receiver := args[:KeyHashLength]
		sender := args[KeyHashLength : 2*KeyHashLength]
		if bytes.Equal(receiver, sender) {
			return [][]byte{receiver}
		}
		return [][]byte{receiver, sender}
	}
	return nil
}

// Changes - the compacted cell set changes of a block
func (t *Tracker) Changes(block *blockrecord.Block) (Changes, error) {
	changes := make(Changes)

	resolver := extension.NewResolver(block, t.cells)
	err := resolver.Inputs(func(_ int, cell *blockrecord.DetailedCell) error {
		for _, subject := range t.Subjects(cell) {
			changes.Remove(subject, cell)
		}
		return nil
	})
	if nil != err {
		return nil, err
	}

	err = extension.Outputs(block, func(_ int, cell *blockrecord.DetailedCell) error {
		for _, subject := range t.Subjects(cell) {
			changes.Add(subject, cell)
		}
		return nil
	})
	if nil != err {
		return nil, err
	}

	changes.Compact()
	return changes, nil
}

// Append - merge the block's changes and keep them for rollback
func (t *Tracker) Append(w storage.Writer, block *blockrecord.Block) error {
	changes, err := t.Changes(block)
	if nil != err {
		return err
	}
	if err := t.merge(w, changes); nil != err {
		t.log.Errorf("block: %d  hash: %s  error: %s", block.Header.Number, block.Header.Hash, err)
		return err
	}
	w.Put(extension.BlockKey(block.Header.Number, block.Header.Hash), changes.Pack())

	t.log.Debugf("block: %d  subjects: %d", block.Header.Number, len(changes))
	return nil
}

// Rollback - merge the inverted changes of the tip
func (t *Tracker) Rollback(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest) error {
	record, err := extension.RollbackRecord(w, tipNumber, tipHash)
	if nil != err {
		return err
	}
	changes, err := UnpackChanges(record)
	if nil != err {
		return err
	}
	if err := t.merge(w, changes.Invert()); nil != err {
		return err
	}
	w.Delete(extension.BlockKey(tipNumber, tipHash))

	t.log.Debugf("rollback block: %d  subjects: %d", tipNumber, len(changes))
	return nil
}

// Prune - drop old change records
func (t *Tracker) Prune(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest, keepDepth uint64) error {
	n, err := extension.PruneBlocks(w, tipNumber, keepDepth)
	if nil != err {
		return err
	}
	t.log.Debugf("pruned: %d records below: %d", n, tipNumber)
	return nil
}

// every subject's new list is built before anything is written
func (t *Tracker) merge(w storage.Writer, changes Changes) error {
	subjects := changes.Subjects()
	results := make([]cellSet, len(subjects))

	for i, subject := range subjects {
		live, err := Cells(w, []byte(subject))
		if nil != err {
			return err
		}
		set := make(cellSet, len(live))
		for _, cell := range live {
			set[cell.OutPoint.Pack()] = cell
		}

		change := changes[subject]
		for p, cell := range change.Removed {
			if _, ok := set[p]; !ok {
				return fmt.Errorf("%w: subject: %x  cell: %s", fault.ErrCellNotInSet, subject, cell.OutPoint)
			}
			delete(set, p)
		}
		for p, cell := range change.Added {
			if _, ok := set[p]; ok {
				return fmt.Errorf("%w: subject: %x  cell: %s", fault.ErrCellAlreadyInSet, subject, cell.OutPoint)
			}
			set[p] = cell
		}
		results[i] = set
	}

	for i, subject := range subjects {
		key := extension.AddressKey([]byte(subject))
		if 0 == len(results[i]) {
			w.Delete(key)
			continue
		}
		w.Put(key, packCells(nil, results[i].sorted()))
		t.log.Tracef("subject: %x  cells: %d", subject, len(results[i]))
	}
	return nil
}

// Cells - live cells of a key hash sorted by out-point, r is scoped to
// the namespace
func Cells(r storage.Reader, keyHash []byte) ([]*blockrecord.DetailedCell, error) {
	value, err := r.Get(extension.AddressKey(keyHash))
	if nil != err {
		return nil, err
	}
	if nil == value {
		return []*blockrecord.DetailedCell{}, nil
	}
	d := extension.NewDecoder(value)
	cells, err := unpackCells(d)
	if nil != err {
		return nil, err
	}
	if err := d.Finish(); nil != err {
		return nil, err
	}
	return cells, nil
}
