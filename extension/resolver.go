// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package extension

import (
	"fmt"

	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/fault"
)

// Resolver - finds the cells spent by a block
//
// outputs of earlier transactions of the block are searched first so
// a cell created and spent in the same block never reaches the cell
// source
type Resolver struct {
	block   *blockrecord.Block
	source  CellSource
	created map[blockrecord.PackedOutPoint][2]int
}

// NewResolver - index the outputs of a block
func NewResolver(block *blockrecord.Block, source CellSource) *Resolver {
	created := make(map[blockrecord.PackedOutPoint][2]int)
	for i, tx := range block.Transactions {
		for j := range tx.Outputs {
			o := blockrecord.OutPoint{TxHash: tx.Hash, Index: uint32(j)}
			created[o.Pack()] = [2]int{i, j}
		}
	}
	return &Resolver{
		block:   block,
		source:  source,
		created: created,
	}
}

// Cell - the cell named by an out-point as seen by transaction txIndex
//
// an output of the same or a later transaction is not yet live
func (r *Resolver) Cell(txIndex int, outPoint blockrecord.OutPoint) (*blockrecord.DetailedCell, error) {
	if position, ok := r.created[outPoint.Pack()]; ok {
		if position[0] >= txIndex {
			return nil, fmt.Errorf("%w: %s spent by transaction: %d before it is created", fault.ErrCellNotFound, outPoint, txIndex)
		}
		return r.block.Cell(position[0], position[1]), nil
	}

	cell, err := r.source.Cell(outPoint)
	if nil != err {
		return nil, err
	}
	if nil == cell {
		return nil, fmt.Errorf("%w: %s", fault.ErrCellNotFound, outPoint)
	}
	return cell, nil
}

// Inputs - call f with every cell spent by the block, the cellbase
// transaction has no real inputs and is skipped
func (r *Resolver) Inputs(f func(txIndex int, cell *blockrecord.DetailedCell) error) error {
	for i, tx := range r.block.Transactions {
		if 0 == i {
			continue
		}
		for _, input := range tx.Inputs {
			cell, err := r.Cell(i, input.PreviousOutput)
			if nil != err {
				return err
			}
			if err := f(i, cell); nil != err {
				return err
			}
		}
	}
	return nil
}

// Outputs - call f with every cell created by the block
func Outputs(block *blockrecord.Block, f func(txIndex int, cell *blockrecord.DetailedCell) error) error {
	for i, tx := range block.Transactions {
		for j := range tx.Outputs {
			if err := f(i, block.Cell(i, j)); nil != err {
				return err
			}
		}
	}
	return nil
}
