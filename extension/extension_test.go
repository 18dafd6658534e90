// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package extension_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/extension/fixtures"
	"github.com/bitmark-inc/cellindexd/extension/mocks"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

func TestBlockKey(t *testing.T) {
	hash := blockdigest.NewDigest([]byte("block"))
	key := extension.BlockKey(0x0102, hash)

	assert.Equal(t, extension.BlockKeyLength, len(key), "key length")
	assert.Equal(t, byte(extension.KindBlock), key[0], "kind")
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, key[1:9], "big endian height")

	number, h, err := extension.ParseBlockKey(key)
	assert.Nil(t, err, "parse error")
	assert.Equal(t, uint64(0x0102), number, "height")
	assert.Equal(t, hash, h, "hash")

	// higher blocks sort later whatever their hash
	low := extension.BlockKey(255, blockdigest.Digest{0xff})
	high := extension.BlockKey(256, blockdigest.Digest{0x00})
	assert.True(t, bytes.Compare(low, high) < 0, "block keys not ordered by height")

	_, _, err = extension.ParseBlockKey(key[:10])
	assert.Equal(t, fault.ErrInvalidBlockKey, err, "short key accepted")
	_, _, err = extension.ParseBlockKey(extension.AddressKey(key[1:]))
	assert.Equal(t, fault.ErrInvalidBlockKey, err, "wrong kind accepted")
}

func TestKindsAreDisjoint(t *testing.T) {
	kinds := []extension.Kind{
		extension.KindAddress,
		extension.KindBlock,
		extension.KindScriptHash,
		extension.KindDue,
		extension.KindTransaction,
		extension.KindCell,
	}
	seen := make(map[byte]bool)
	for _, k := range kinds {
		assert.False(t, seen[byte(k)], "duplicate kind: %d", k)
		seen[byte(k)] = true
	}

	o := blockrecord.OutPoint{TxHash: blockdigest.Digest{1}, Index: 7}
	p := o.Pack()
	assert.Equal(t, append([]byte{byte(extension.KindCell)}, p[:]...), extension.CellKey(o), "cell key")
	assert.Equal(t, []byte{byte(extension.KindDue), 0, 0, 0, 0, 0, 0, 0, 9, 0xaa}, extension.DueKey(9, []byte{0xaa}), "due key")
}

func TestConfig(t *testing.T) {
	c := fixtures.Config()
	assert.Equal(t, uint64(extension.DefaultMaturityEpochs), c.MaturityEpochs, "default maturity")

	lock := fixtures.Lock(1)
	assert.True(t, c.Matches(extension.NativeLock, &lock), "native lock")
	assert.False(t, c.Matches(extension.DepositLock, &lock), "deposit matched native lock")
	assert.False(t, c.Matches(extension.TokenType, nil), "nil script matched")

	other := lock
	other.HashType = blockrecord.HashTypeData
	assert.False(t, c.Matches(extension.NativeLock, &other), "hash type ignored")

	empty, err := extension.NewConfig(nil, 10)
	assert.Nil(t, err, "empty config error")
	assert.Equal(t, uint64(10), empty.MaturityEpochs, "maturity")
	assert.False(t, empty.Matches(extension.NativeLock, &lock), "unconfigured name matched")
	_, ok := empty.Pattern(extension.NativeLock)
	assert.False(t, ok, "unconfigured pattern")

	_, err = extension.NewConfig(map[string]extension.ScriptPattern{"bogus": {}}, 0)
	assert.True(t, errors.Is(err, fault.ErrInvalidScriptPattern), "unknown name accepted")
}

func TestResolver(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	source := mocks.NewMockCellSource(ctl)

	earlier := fixtures.Tx("earlier", nil, fixtures.Out(100, fixtures.Lock(1)))
	earlierCell := fixtures.Block(1, blockdigest.Digest{}, fixtures.Epoch(0), earlier).Cell(0, 0)

	cellbase := fixtures.Tx("cellbase", []blockrecord.OutPoint{{Index: 0xffffffff}}, fixtures.Out(1000, fixtures.Lock(9)))
	first := fixtures.Tx("first", []blockrecord.OutPoint{fixtures.Spend(earlier, 0)}, fixtures.Out(60, fixtures.Lock(2)), fixtures.Out(40, fixtures.Lock(3)))
	second := fixtures.Tx("second", []blockrecord.OutPoint{fixtures.Spend(first, 1)}, fixtures.Out(40, fixtures.Lock(4)))
	block := fixtures.Block(2, blockdigest.Digest{}, fixtures.Epoch(0), cellbase, first, second)

	source.EXPECT().Cell(fixtures.Spend(earlier, 0)).Return(earlierCell, nil).Times(1)

	r := extension.NewResolver(block, source)
	spent := make([]*blockrecord.DetailedCell, 0)
	err := r.Inputs(func(txIndex int, cell *blockrecord.DetailedCell) error {
		assert.NotEqual(t, 0, txIndex, "cellbase input resolved")
		spent = append(spent, cell)
		return nil
	})
	assert.Nil(t, err, "inputs error")
	assert.Equal(t, 2, len(spent), "spent cells")
	assert.Equal(t, uint64(100), spent[0].Output.Capacity, "earlier cell")
	assert.Equal(t, uint64(40), spent[1].Output.Capacity, "same block cell")
	assert.Equal(t, uint64(2), spent[1].BlockNumber, "same block cell height")
}

func TestResolverLaterOutput(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	// no call to the committed cells is expected
	source := mocks.NewMockCellSource(ctl)

	cellbase := fixtures.Tx("cellbase", nil, fixtures.Out(1000, fixtures.Lock(9)))
	later := fixtures.Tx("later", nil, fixtures.Out(70, fixtures.Lock(5)))
	early := fixtures.Tx("early", []blockrecord.OutPoint{fixtures.Spend(later, 0)}, fixtures.Out(70, fixtures.Lock(6)))
	block := fixtures.Block(4, blockdigest.Digest{}, fixtures.Epoch(0), cellbase, early, later)

	r := extension.NewResolver(block, source)
	err := r.Inputs(func(int, *blockrecord.DetailedCell) error {
		return nil
	})
	assert.True(t, errors.Is(err, fault.ErrCellNotFound), "later output resolved: %v", err)

	_, err = r.Cell(2, fixtures.Spend(later, 0))
	assert.True(t, errors.Is(err, fault.ErrCellNotFound), "own output resolved: %v", err)

	cell, err := r.Cell(3, fixtures.Spend(later, 0))
	assert.Nil(t, err, "earlier output error")
	assert.Equal(t, uint64(70), cell.Output.Capacity, "earlier output")
}

func TestOutputsStopsOnError(t *testing.T) {
	cellbase := fixtures.Tx("cellbase", nil, fixtures.Out(1000, fixtures.Lock(9)))
	pay := fixtures.Tx("pay", nil, fixtures.Out(1, fixtures.Lock(1)), fixtures.Out(2, fixtures.Lock(2)))
	block := fixtures.Block(5, blockdigest.Digest{}, fixtures.Epoch(0), cellbase, pay)

	calls := 0
	err := extension.Outputs(block, func(txIndex int, cell *blockrecord.DetailedCell) error {
		calls += 1
		if 1 == txIndex {
			return fault.ErrInvalidRecord
		}
		return nil
	})
	assert.True(t, errors.Is(err, fault.ErrInvalidRecord), "callback error lost: %v", err)
	assert.Equal(t, 2, calls, "outputs after the error were visited")
}

func TestResolverMissingCell(t *testing.T) {
	cells := fixtures.Cells{}
	missing := blockrecord.OutPoint{TxHash: blockdigest.Digest{7}, Index: 1}

	cellbase := fixtures.Tx("cellbase", nil, fixtures.Out(1000, fixtures.Lock(9)))
	spend := fixtures.Tx("spend", []blockrecord.OutPoint{missing}, fixtures.Out(1, fixtures.Lock(1)))
	block := fixtures.Block(3, blockdigest.Digest{}, fixtures.Epoch(0), cellbase, spend)

	err := extension.NewResolver(block, cells).Inputs(func(int, *blockrecord.DetailedCell) error {
		return nil
	})
	assert.True(t, errors.Is(err, fault.ErrCellNotFound), "missing cell: %v", err)
	assert.True(t, fault.IsErrNotFound(err), "not found class")
}

func TestRollbackRecordAndPrune(t *testing.T) {
	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	ns := storage.NewNamespace('T', "test")

	b, err := s.Begin()
	assert.Nil(t, err, "begin error")
	w := ns.Writer(b)
	for i := uint64(0); i < 10; i += 1 {
		w.Put(extension.BlockKey(i, blockdigest.Digest{byte(i)}), []byte{byte(i)})
	}
	w.Put(extension.AddressKey([]byte("subject")), []byte("total"))
	assert.Nil(t, b.Commit(), "commit error")

	r := ns.Reader(s)
	record, err := extension.RollbackRecord(r, 4, blockdigest.Digest{4})
	assert.Nil(t, err, "record error")
	assert.Equal(t, []byte{4}, record, "record")

	_, err = extension.RollbackRecord(r, 4, blockdigest.Digest{5})
	assert.True(t, errors.Is(err, fault.ErrRollbackRecordNotFound), "wrong hash found")

	// younger chain than the keep depth
	b, _ = s.Begin()
	n, err := extension.PruneBlocks(ns.Writer(b), 3, 5)
	assert.Nil(t, err, "prune error")
	assert.Equal(t, 0, n, "pruned below keep depth")
	b.Abort()

	b, _ = s.Begin()
	n, err = extension.PruneBlocks(ns.Writer(b), 9, 5)
	assert.Nil(t, err, "prune error")
	assert.Equal(t, 4, n, "pruned count")
	assert.Nil(t, b.Commit(), "commit error")

	for i := uint64(0); i < 10; i += 1 {
		_, err := extension.RollbackRecord(r, i, blockdigest.Digest{byte(i)})
		if i < 4 {
			assert.True(t, errors.Is(err, fault.ErrRollbackRecordNotFound), "height %d not pruned", i)
		} else {
			assert.Nil(t, err, "height %d pruned", i)
		}
	}
	total, _ := r.Get(extension.AddressKey([]byte("subject")))
	assert.Equal(t, []byte("total"), total, "running total pruned")

	// repeat is harmless
	b, _ = s.Begin()
	n, err = extension.PruneBlocks(ns.Writer(b), 9, 5)
	assert.Nil(t, err, "prune error")
	assert.Equal(t, 0, n, "second prune count")
	b.Abort()
}
