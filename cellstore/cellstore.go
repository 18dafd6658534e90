// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cellstore - the live cell set of the chain
//
// keys:
//
//	0x50 ++ packed out-point      - packed DetailedCell
//	0x10 ++ BE height ++ hash     - created out-points ++ spent cells
package cellstore

import (
	"fmt"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// Name - of this index
const Name = "cells"

// Namespace - storage prefix of this index
var Namespace = storage.NewNamespace('C', Name)

// CellStore - primary indexer and the cell source of the other indices
type CellStore struct {
	log       *logger.L
	committed storage.Reader
}

// New - committed is used to resolve cells from earlier blocks
func New(committed storage.Reader) *CellStore {
	return &CellStore{
		log:       logger.New(Name),
		committed: committed,
	}
}

// Name - implements extension.Extension
func (c *CellStore) Name() string {
	return Name
}

// Namespace - implements extension.Extension
func (c *CellStore) Namespace() storage.Namespace {
	return Namespace
}

// Cell - implements extension.CellSource over committed state
func (c *CellStore) Cell(outPoint blockrecord.OutPoint) (*blockrecord.DetailedCell, error) {
	return Cell(Namespace.Reader(c.committed), outPoint)
}

// Cell - a live cell, r is scoped to the namespace
func Cell(r storage.Reader, outPoint blockrecord.OutPoint) (*blockrecord.DetailedCell, error) {
	packed, err := r.Get(extension.CellKey(outPoint))
	if nil != err {
		return nil, err
	}
	if nil == packed {
		return nil, fmt.Errorf("%w: %s", fault.ErrCellNotFound, outPoint)
	}
	return unpackCell(packed)
}

// Append - remove spent cells and add created cells
func (c *CellStore) Append(w storage.Writer, block *blockrecord.Block) error {
	rec := &record{
		created: make([]blockrecord.PackedOutPoint, 0),
		spent:   make([]*blockrecord.DetailedCell, 0),
	}
	createdHere := make(map[blockrecord.PackedOutPoint]struct{})

	for i, tx := range block.Transactions {
		if 0 != i {
			for _, input := range tx.Inputs {
				op := input.PreviousOutput
				packed := op.Pack()
				key := extension.CellKey(op)

				value, err := w.Get(key)
				if nil != err {
					return err
				}
				if nil == value {
					return fmt.Errorf("%w: %s", fault.ErrCellNotFound, op)
				}
				w.Delete(key)

				if _, ok := createdHere[packed]; ok {
					delete(createdHere, packed)
					rec.removeCreated(packed)
					continue
				}
				cell, err := unpackCell(value)
				if nil != err {
					return err
				}
				rec.spent = append(rec.spent, cell)
			}
		}

		for j := range tx.Outputs {
			cell := block.Cell(i, j)
			packed := cell.OutPoint.Pack()
			w.Put(extension.CellKey(cell.OutPoint), cell.Pack())
			createdHere[packed] = struct{}{}
			rec.created = append(rec.created, packed)
		}
	}

	c.log.Debugf("block: %d  created: %d  spent: %d", block.Header.Number, len(rec.created), len(rec.spent))
	w.Put(extension.BlockKey(block.Header.Number, block.Header.Hash), rec.pack())
	return nil
}

// Rollback - remove created cells and restore spent cells
func (c *CellStore) Rollback(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest) error {
	packed, err := extension.RollbackRecord(w, tipNumber, tipHash)
	if nil != err {
		return err
	}
	rec, err := unpackRecord(packed)
	if nil != err {
		return err
	}

	for _, p := range rec.created {
		w.Delete(extension.CellKey(p.Unpack()))
	}
	for _, cell := range rec.spent {
		w.Put(extension.CellKey(cell.OutPoint), cell.Pack())
	}
	w.Delete(extension.BlockKey(tipNumber, tipHash))

	c.log.Debugf("rollback block: %d  removed: %d  restored: %d", tipNumber, len(rec.created), len(rec.spent))
	return nil
}

// Prune - drop old rollback records
func (c *CellStore) Prune(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest, keepDepth uint64) error {
	n, err := extension.PruneBlocks(w, tipNumber, keepDepth)
	if nil != err {
		return err
	}
	c.log.Debugf("pruned: %d records below: %d", n, tipNumber)
	return nil
}

func unpackCell(packed []byte) (*blockrecord.DetailedCell, error) {
	cell, rest, err := blockrecord.UnpackDetailedCell(packed)
	if nil != err {
		return nil, err
	}
	if 0 != len(rest) {
		return nil, fault.ErrInvalidRecord
	}
	return cell, nil
}
