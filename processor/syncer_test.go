// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package processor_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/cellindexd/balance"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/extension/fixtures"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/processor"
	"github.com/bitmark-inc/cellindexd/processor/mocks"
	"github.com/bitmark-inc/cellindexd/storage"
)

func TestSyncerIdle(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	p, err := processor.New(s, 10, nil, allExtensions(s)...)
	assert.Nil(t, err, "new error")

	source := mocks.NewMockBlockSource(ctl)
	source.EXPECT().Block(uint64(0)).Return(nil, fault.ErrBlockNotFound).Times(1)

	syncer := processor.NewSyncer(p, source, 100, 1, 0)
	progressed, err := syncer.Step()
	assert.Nil(t, err, "idle error")
	assert.False(t, progressed, "progress without a block")

	source.EXPECT().Block(uint64(0)).Return(nil, fault.ErrInvalidMolecule).Times(1)
	_, err = syncer.Step()
	assert.True(t, errors.Is(err, fault.ErrInvalidMolecule), "source error: %v", err)
}

func TestSyncerFollowsFork(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	p, err := processor.New(s, 10, nil, allExtensions(s)...)
	assert.Nil(t, err, "new error")

	blocks := testChain(3)
	source := mocks.NewMockBlockSource(ctl)
	syncer := processor.NewSyncer(p, source, 100, 1, 0)

	for _, block := range blocks {
		source.EXPECT().Block(block.Header.Number).Return(block, nil).Times(1)
		progressed, err := syncer.Step()
		assert.Nil(t, err, "append %d", block.Header.Number)
		assert.True(t, progressed, "no progress at %d", block.Header.Number)
	}

	// a competing block 3 whose parent is a different block 2
	fork2 := fixtures.Block(2, blocks[1].Header.Hash, fixtures.Epoch(2), blocks[2].Transactions[0])
	fork3 := fixtures.Block(3, fork2.Header.Hash, fixtures.Epoch(3), fixtures.Tx("fork cellbase", nil, fixtures.Out(1000, fixtures.Lock(3))))

	source.EXPECT().Block(uint64(3)).Return(fork3, nil).Times(1)
	progressed, err := syncer.Step()
	assert.Nil(t, err, "rollback error")
	assert.True(t, progressed, "rollback is progress")

	tip, err := p.Tip()
	assert.Nil(t, err, "tip error")
	assert.Equal(t, blocks[1].Header, *tip, "tip after fork rollback")
	rolledBack := fixtures.Dump(s)

	source.EXPECT().Block(uint64(2)).Return(fork2, nil).Times(1)
	source.EXPECT().Block(uint64(3)).Return(fork3, nil).Times(1)
	for i := 0; i < 2; i += 1 {
		progressed, err := syncer.Step()
		assert.Nil(t, err, "fork append")
		assert.True(t, progressed, "fork progress")
	}

	tip, err = p.Tip()
	assert.Nil(t, err, "tip error")
	assert.Equal(t, fork3.Header, *tip, "tip on fork")

	header, err := processor.Header(s, 2, blocks[2].Header.Hash)
	assert.Nil(t, err, "header error")
	assert.Nil(t, header, "abandoned header kept")
	assert.NotEqual(t, rolledBack, fixtures.Dump(s), "fork not applied")
}

func TestSyncerPrunes(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	p, err := processor.New(s, 1, nil, allExtensions(s)...)
	assert.Nil(t, err, "new error")

	blocks := testChain(4)
	source := mocks.NewMockBlockSource(ctl)
	syncer := processor.NewSyncer(p, source, 100, 1, 4)

	for _, block := range blocks[:3] {
		source.EXPECT().Block(block.Header.Number).Return(block, nil).Times(1)
		_, err := syncer.Step()
		assert.Nil(t, err, "append %d", block.Header.Number)
	}

	record := func(number uint64) []byte {
		value, err := balance.NativeNamespace.Reader(s).Get(extension.BlockKey(number, blocks[number].Header.Hash))
		assert.Nil(t, err, "get error")
		return value
	}
	assert.NotNil(t, record(0), "pruned before interval")

	source.EXPECT().Block(uint64(3)).Return(blocks[3], nil).Times(1)
	_, err = syncer.Step()
	assert.Nil(t, err, "append 3")

	assert.Nil(t, record(0), "record 0 kept after interval")
	assert.Nil(t, record(1), "record 1 kept after interval")
	assert.NotNil(t, record(2), "record 2 pruned")
}
