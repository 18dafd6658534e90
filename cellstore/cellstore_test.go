// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cellstore_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/cellstore"
	"github.com/bitmark-inc/cellindexd/extension/fixtures"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

func TestAppendRollback(t *testing.T) {
	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	c := cellstore.New(s)

	genesisTx := fixtures.Tx("genesis", nil, fixtures.Out(500, fixtures.Lock(1)), fixtures.Out(700, fixtures.Lock(2)))
	genesis := fixtures.Block(0, blockdigest.Digest{}, fixtures.Epoch(0), genesisTx)
	assert.Nil(t, fixtures.Append(s, c, genesis), "append genesis")

	cell, err := c.Cell(fixtures.Spend(genesisTx, 1))
	assert.Nil(t, err, "cell error")
	assert.Equal(t, uint64(700), cell.Output.Capacity, "capacity")
	assert.True(t, cell.Equal(genesis.Cell(0, 1)), "stored cell differs")

	before := fixtures.Dump(s)

	cellbase := fixtures.Tx("cellbase 1", nil, fixtures.Out(1000, fixtures.Lock(3)))
	spend := fixtures.Tx("spend", []blockrecord.OutPoint{fixtures.Spend(genesisTx, 0)}, fixtures.Out(200, fixtures.Lock(4)), fixtures.Out(300, fixtures.Lock(5)))
	respend := fixtures.Tx("respend", []blockrecord.OutPoint{fixtures.Spend(spend, 1)}, fixtures.Out(300, fixtures.Lock(6)))
	block := fixtures.Block(1, genesis.Header.Hash, fixtures.Epoch(0), cellbase, spend, respend)
	assert.Nil(t, fixtures.Append(s, c, block), "append block")

	_, err = c.Cell(fixtures.Spend(genesisTx, 0))
	assert.True(t, errors.Is(err, fault.ErrCellNotFound), "spent cell still live")
	_, err = c.Cell(fixtures.Spend(spend, 1))
	assert.True(t, errors.Is(err, fault.ErrCellNotFound), "same block spent cell live")
	cell, err = c.Cell(fixtures.Spend(respend, 0))
	assert.Nil(t, err, "created cell error")
	assert.Equal(t, uint64(1), cell.BlockNumber, "created cell height")
	assert.Equal(t, uint32(2), cell.TxIndex, "created cell tx index")

	assert.Nil(t, fixtures.Rollback(s, c, 1, block.Header.Hash), "rollback")
	assert.Equal(t, before, fixtures.Dump(s), "rollback is not exact")

	err = fixtures.Rollback(s, c, 1, block.Header.Hash)
	assert.True(t, errors.Is(err, fault.ErrRollbackRecordNotFound), "second rollback: %v", err)
}

func TestMissingInput(t *testing.T) {
	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	c := cellstore.New(s)

	before := fixtures.Dump(s)
	cellbase := fixtures.Tx("cellbase", nil, fixtures.Out(1000, fixtures.Lock(3)))
	spend := fixtures.Tx("spend", []blockrecord.OutPoint{{TxHash: blockdigest.Digest{9}}}, fixtures.Out(1, fixtures.Lock(1)))
	block := fixtures.Block(0, blockdigest.Digest{}, fixtures.Epoch(0), cellbase, spend)

	err = fixtures.Append(s, c, block)
	assert.True(t, errors.Is(err, fault.ErrCellNotFound), "missing input: %v", err)
	assert.Equal(t, before, fixtures.Dump(s), "failed append wrote data")
}

func TestPrune(t *testing.T) {
	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	c := cellstore.New(s)

	parent := blockdigest.Digest{}
	blocks := make([]*blockrecord.Block, 0)
	for i := uint64(0); i < 6; i += 1 {
		tx := fixtures.Tx(string(rune('a'+i)), nil, fixtures.Out(100+i, fixtures.Lock(byte(i))))
		b := fixtures.Block(i, parent, fixtures.Epoch(0), tx)
		assert.Nil(t, fixtures.Append(s, c, b), "append %d", i)
		blocks = append(blocks, b)
		parent = b.Header.Hash
	}

	assert.Nil(t, fixtures.Prune(s, c, 5, parent, 2), "prune")

	err = fixtures.Rollback(s, c, 2, blocks[2].Header.Hash)
	assert.True(t, errors.Is(err, fault.ErrRollbackRecordNotFound), "record below limit kept")

	for i := 3; i < 6; i += 1 {
		tx := blocks[i].Transactions[0]
		_, err := c.Cell(fixtures.Spend(tx, 0))
		assert.Nil(t, err, "cell %d", i)
	}
	assert.Nil(t, fixtures.Rollback(s, c, 5, blocks[5].Header.Hash), "record at tip pruned")
	assert.Nil(t, fixtures.Rollback(s, c, 4, blocks[4].Header.Hash), "record above limit pruned")
	assert.Nil(t, fixtures.Rollback(s, c, 3, blocks[3].Header.Hash), "record at limit pruned")

	// running state of pruned blocks remains
	_, err = c.Cell(fixtures.Spend(blocks[0].Transactions[0], 0))
	assert.Nil(t, err, "pruned block cell removed")
}
