// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"fmt"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// Append - run one extension append in its own batch
func Append(s storage.Store, ext extension.Extension, block *blockrecord.Block) error {
	return run(s, ext, func(w storage.Writer) error {
		return ext.Append(w, block)
	})
}

// Rollback - run one extension rollback in its own batch
func Rollback(s storage.Store, ext extension.Extension, number uint64, hash blockdigest.Digest) error {
	return run(s, ext, func(w storage.Writer) error {
		return ext.Rollback(w, number, hash)
	})
}

// Prune - run one extension prune in its own batch
func Prune(s storage.Store, ext extension.Extension, number uint64, hash blockdigest.Digest, keepDepth uint64) error {
	return run(s, ext, func(w storage.Writer) error {
		return ext.Prune(w, number, hash, keepDepth)
	})
}

func run(s storage.Store, ext extension.Extension, f func(w storage.Writer) error) error {
	b, err := s.Begin()
	if nil != err {
		return err
	}
	if err := f(ext.Namespace().Writer(b)); nil != err {
		b.Abort()
		return err
	}
	return b.Commit()
}

// Dump - every committed key and value as hex strings
func Dump(r storage.Reader) map[string]string {
	dump := make(map[string]string)
	elements, err := storage.Collect(r.Iterator(nil, nil, storage.Forward), 0)
	if nil != err {
		panic(err)
	}
	for _, e := range elements {
		dump[fmt.Sprintf("%x", e.Key)] = fmt.Sprintf("%x", e.Value)
	}
	return dump
}

// Cells - an in-memory cell source filled from blocks
type Cells map[blockrecord.PackedOutPoint]*blockrecord.DetailedCell

// Add - remember every output of a block
func (c Cells) Add(block *blockrecord.Block) {
	_ = extension.Outputs(block, func(_ int, cell *blockrecord.DetailedCell) error {
		c[cell.OutPoint.Pack()] = cell
		return nil
	})
}

// Cell - implements extension.CellSource
func (c Cells) Cell(outPoint blockrecord.OutPoint) (*blockrecord.DetailedCell, error) {
	cell, ok := c[outPoint.Pack()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fault.ErrCellNotFound, outPoint)
	}
	return cell, nil
}
