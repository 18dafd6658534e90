// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package maturity_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/extension/fixtures"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/maturity"
	"github.com/bitmark-inc/cellindexd/storage"
)

// block i is in epoch i and pays reward 1000+i to lock(1) for odd i
// and lock(2) for even i
func rewardChain(count int) []*blockrecord.Block {
	blocks := make([]*blockrecord.Block, 0, count)
	parent := blockdigest.Digest{}
	for i := 0; i < count; i += 1 {
		owner := fixtures.Lock(2)
		if 1 == i%2 {
			owner = fixtures.Lock(1)
		}
		cellbase := fixtures.Tx(fmt.Sprintf("cellbase %d", i), nil, fixtures.Out(uint64(1000+i), owner))
		block := fixtures.Block(uint64(i), parent, fixtures.Epoch(uint64(i)), cellbase)
		blocks = append(blocks, block)
		parent = block.Header.Hash
	}
	return blocks
}

func account(t *testing.T, s storage.Store, owner byte) *maturity.Account {
	lock := fixtures.Lock(owner)
	hash := lock.Hash()
	a, err := maturity.GetAccount(maturity.Namespace.Reader(s), hash[:])
	assert.Nil(t, err, "account error")
	return a
}

func TestRewardMatures(t *testing.T) {
	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	l := maturity.New(fixtures.Config())
	blocks := rewardChain(9)

	dumps := make([]map[string]string, 0)
	for i := 0; i < 6; i += 1 {
		dumps = append(dumps, fixtures.Dump(s))
		assert.Nil(t, fixtures.Append(s, l, blocks[i]), "append %d", i)
	}

	// genesis reward is not queued, epoch 5 block leaves threshold 1
	a1 := account(t, s, 1)
	assert.Equal(t, uint64(0), a1.Matured, "matured before threshold")
	assert.Equal(t, 3, len(a1.Queue), "lock 1 queue")
	assert.Equal(t, uint64(1001+1003+1005), a1.Immature(), "lock 1 immature")
	a2 := account(t, s, 2)
	assert.Equal(t, 2, len(a2.Queue), "lock 2 queue")

	// epoch 6: threshold 2 matures the epoch 1 entry
	dumps = append(dumps, fixtures.Dump(s))
	assert.Nil(t, fixtures.Append(s, l, blocks[6]), "append 6")
	a1 = account(t, s, 1)
	assert.Equal(t, uint64(1001), a1.Matured, "matured at threshold")
	assert.Equal(t, 2, len(a1.Queue), "lock 1 queue after maturing")
	assert.Equal(t, maturity.Entry{Epoch: fixtures.Epoch(3), Amount: 1003}, a1.Queue[0], "queue front")

	// epoch 7: threshold 3 matures lock 2's epoch 2 entry only
	dumps = append(dumps, fixtures.Dump(s))
	assert.Nil(t, fixtures.Append(s, l, blocks[7]), "append 7")
	a1 = account(t, s, 1)
	assert.Equal(t, uint64(1001), a1.Matured, "lock 1 matured once")
	a2 = account(t, s, 2)
	assert.Equal(t, uint64(1002), a2.Matured, "lock 2 matured")

	assert.Nil(t, fixtures.Rollback(s, l, 7, blocks[7].Header.Hash), "rollback 7")
	assert.Equal(t, dumps[7], fixtures.Dump(s), "rollback 7 not exact")
	assert.Equal(t, uint64(1001), account(t, s, 1).Matured, "other subject disturbed")

	assert.Nil(t, fixtures.Rollback(s, l, 6, blocks[6].Header.Hash), "rollback 6")
	assert.Equal(t, dumps[6], fixtures.Dump(s), "rollback 6 not exact")

	for i := 5; i >= 0; i -= 1 {
		assert.Nil(t, fixtures.Rollback(s, l, uint64(i), blocks[i].Header.Hash), "rollback %d", i)
		assert.Equal(t, dumps[i], fixtures.Dump(s), "rollback %d not exact", i)
	}
}

func TestFractionalEpochs(t *testing.T) {
	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	config, err := extension.NewConfig(nil, 1)
	assert.Nil(t, err, "config error")
	l := maturity.New(config)

	epochs := []blockrecord.Epoch{
		{Number: 0, Index: 0, Length: 4},
		{Number: 0, Index: 2, Length: 4},
		{Number: 1, Index: 1, Length: 4},
		{Number: 1, Index: 2, Length: 4},
		{Number: 1, Index: 3, Length: 4},
	}
	parent := blockdigest.Digest{}
	for i, epoch := range epochs {
		cellbase := fixtures.Tx(fmt.Sprintf("cellbase %d", i), nil, fixtures.Out(100, fixtures.Lock(1)))
		block := fixtures.Block(uint64(i), parent, epoch, cellbase)
		assert.Nil(t, fixtures.Append(s, l, block), "append %d", i)
		parent = block.Header.Hash
	}

	// threshold at 1+3/4 is 0+3/4 so only the 0+2/4 entry matured
	a := account(t, s, 1)
	assert.Equal(t, uint64(100), a.Matured, "matured")
	assert.Equal(t, 3, len(a.Queue), "queue")
}

func TestQueueMismatch(t *testing.T) {
	s, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer s.Close()

	l := maturity.New(fixtures.Config())

	// a due entry without a matching account
	b, err := s.Begin()
	assert.Nil(t, err, "begin error")
	lock := fixtures.Lock(7)
	subject := lock.Hash()
	entry := maturity.Entry{Epoch: fixtures.Epoch(0), Amount: 5}
	maturity.Namespace.Writer(b).Put(extension.DueKey(1, subject[:]), entry.Pack())
	assert.Nil(t, b.Commit(), "commit error")

	before := fixtures.Dump(s)
	cellbase := fixtures.Tx("cellbase", nil, fixtures.Out(100, fixtures.Lock(1)))
	block := fixtures.Block(10, blockdigest.Digest{}, fixtures.Epoch(10), cellbase)
	err = fixtures.Append(s, l, block)
	assert.True(t, errors.Is(err, fault.ErrMaturityQueueMismatch), "mismatch accepted: %v", err)
	assert.Equal(t, before, fixtures.Dump(s), "failed append wrote data")
}

func TestAccountPack(t *testing.T) {
	a := &maturity.Account{
		Matured: 77,
		Queue: []maturity.Entry{
			{Epoch: blockrecord.Epoch{Number: 1, Index: 2, Length: 3}, Amount: 4},
			{Epoch: blockrecord.Epoch{Number: 5, Index: 6, Length: 7}, Amount: 8},
		},
	}
	packed := a.Pack()
	assert.Equal(t, 8+4+2*maturity.EntryLength, len(packed), "packed length")

	u, err := maturity.AccountFromBytes(packed)
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, a, u, "round trip")

	_, err = maturity.AccountFromBytes(packed[:len(packed)-1])
	assert.Equal(t, fault.ErrInvalidRecord, err, "truncated account")
}
