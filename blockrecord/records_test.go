// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/fault"
)

func testScript(args string) blockrecord.Script {
	return blockrecord.Script{
		CodeHash: blockdigest.NewDigest([]byte("code")),
		HashType: blockrecord.HashTypeType,
		Args:     blockrecord.Bytes(args),
	}
}

func TestScriptPack(t *testing.T) {
	s := testScript("owner-args")
	packed := s.Pack()

	// header: total size + 3 offsets
	assert.Equal(t, 16+32+1+4+len(s.Args), len(packed), "packed length")

	u, err := blockrecord.UnpackScript(packed)
	assert.Nil(t, err, "unpack error")
	assert.True(t, s.Equal(u), "script round trip: %#v", u)
	assert.Equal(t, s.Hash(), u.Hash(), "script hash")

	other := testScript("other-args")
	assert.NotEqual(t, s.Hash(), other.Hash(), "hash ignores args")

	_, err = blockrecord.UnpackScript(packed[:len(packed)-1])
	assert.True(t, errors.Is(err, fault.ErrInvalidMolecule), "truncated script accepted")
}

func TestDetailedCellPack(t *testing.T) {
	typeScript := testScript("token")
	cells := []*blockrecord.DetailedCell{
		{
			BlockNumber: 12,
			BlockHash:   blockdigest.NewDigest([]byte("block")),
			TxIndex:     3,
			OutPoint: blockrecord.OutPoint{
				TxHash: blockdigest.NewDigest([]byte("tx")),
				Index:  2,
			},
			Output: blockrecord.CellOutput{
				Capacity: 61_00000000,
				Lock:     testScript("lock"),
				Type:     &typeScript,
			},
			Data: blockrecord.Bytes{1, 2, 3},
		},
		{
			BlockNumber: 0,
			Output: blockrecord.CellOutput{
				Capacity: 1,
				Lock:     testScript("lock"),
			},
		},
	}

	for i, cell := range cells {
		packed := cell.Pack()
		u, rest, err := blockrecord.UnpackDetailedCell(append(packed, 0xff))
		assert.Nil(t, err, "%d: unpack error", i)
		assert.Equal(t, []byte{0xff}, rest, "%d: remaining bytes", i)
		assert.Equal(t, cell, u, "%d: round trip", i)
		assert.True(t, cell.Equal(u), "%d: equal", i)

		_, _, err = blockrecord.UnpackDetailedCell(packed[:len(packed)-2])
		assert.NotNil(t, err, "%d: truncated cell accepted", i)
	}
}

func TestOutPointOrder(t *testing.T) {
	tx := blockdigest.NewDigest([]byte("tx"))
	a := blockrecord.OutPoint{TxHash: tx, Index: 1}.Pack()
	b := blockrecord.OutPoint{TxHash: tx, Index: 256}.Pack()
	assert.True(t, string(a[:]) < string(b[:]), "out-points do not sort by index")

	o, err := blockrecord.OutPointFromBytes(b[:])
	assert.Nil(t, err, "from bytes error")
	assert.Equal(t, uint32(256), o.Index, "index")

	_, err = blockrecord.OutPointFromBytes(b[1:])
	assert.Equal(t, fault.ErrInvalidLength, err, "short out-point accepted")
}

func TestEpochCompare(t *testing.T) {
	items := []struct {
		a, b     blockrecord.Epoch
		expected int
	}{
		{blockrecord.Epoch{Number: 1}, blockrecord.Epoch{Number: 2}, -1},
		{blockrecord.Epoch{Number: 2, Index: 1, Length: 2}, blockrecord.Epoch{Number: 2, Index: 2, Length: 4}, 0},
		{blockrecord.Epoch{Number: 2, Index: 999, Length: 1000}, blockrecord.Epoch{Number: 3, Index: 0, Length: 1800}, -1},
		{blockrecord.Epoch{Number: 5, Index: 3, Length: 10}, blockrecord.Epoch{Number: 5, Index: 1, Length: 4}, 1},
		{blockrecord.Epoch{Number: 7}, blockrecord.Epoch{Number: 7, Length: 1800}, 0},
	}
	for i, item := range items {
		assert.Equal(t, item.expected, item.a.Cmp(item.b), "%d: %s cmp %s", i, item.a, item.b)
		assert.Equal(t, -item.expected, item.b.Cmp(item.a), "%d: reversed", i)
	}

	e := blockrecord.Epoch{Number: 10, Index: 5, Length: 100}
	threshold, ok := e.Sub(4)
	assert.True(t, ok, "sub failed")
	assert.Equal(t, blockrecord.Epoch{Number: 6, Index: 5, Length: 100}, threshold, "threshold")

	_, ok = e.Sub(11)
	assert.False(t, ok, "sub before genesis")

	u, err := blockrecord.EpochFromBytes(e.Pack())
	assert.Nil(t, err, "epoch unpack error")
	assert.Equal(t, e, u, "epoch round trip")
}

func TestHeaderPack(t *testing.T) {
	h := &blockrecord.Header{
		Number:     99,
		Hash:       blockdigest.NewDigest([]byte("h")),
		ParentHash: blockdigest.NewDigest([]byte("p")),
		Epoch:      blockrecord.Epoch{Number: 1, Index: 2, Length: 3},
	}
	u, err := blockrecord.HeaderFromBytes(h.Pack())
	assert.Nil(t, err, "header unpack error")
	assert.Equal(t, h, u, "header round trip")
}

func TestWitnessArgs(t *testing.T) {
	w := &blockrecord.WitnessArgs{
		Lock:       nil,
		InputType:  []byte{},
		OutputType: []byte{9, 8, 7},
	}
	u, err := blockrecord.UnpackWitnessArgs(w.Pack())
	assert.Nil(t, err, "unpack error")
	assert.Nil(t, u.Lock, "absent lock")
	assert.NotNil(t, u.InputType, "present empty input type")
	assert.Equal(t, 0, len(u.InputType), "input type length")
	assert.Equal(t, []byte{9, 8, 7}, u.OutputType, "output type")

	_, err = blockrecord.UnpackWitnessArgs([]byte{1, 2, 3})
	assert.Equal(t, fault.ErrInvalidMolecule, err, "garbage accepted")
}

func TestBlockFromJSON(t *testing.T) {
	text := `{
  "header": {
    "number": 1,
    "hash": "0x0000000000000000000000000000000000000000000000000000000000000001",
    "parent_hash": "0x0000000000000000000000000000000000000000000000000000000000000000",
    "epoch": {"number": 0, "index": 1, "length": 1000}
  },
  "transactions": [{
    "hash": "0x00000000000000000000000000000000000000000000000000000000000000aa",
    "inputs": [],
    "outputs": [{
      "capacity": 500000,
      "lock": {
        "code_hash": "0x00000000000000000000000000000000000000000000000000000000000000bb",
        "hash_type": "type",
        "args": "0x0102"
      },
      "type": null
    }],
    "outputs_data": ["0x"],
    "witnesses": []
  }]
}`
	block, err := blockrecord.BlockFromJSON([]byte(text))
	assert.Nil(t, err, "decode error")
	assert.Equal(t, uint64(1), block.Header.Number, "number")
	assert.False(t, block.IsGenesis(), "not genesis")

	cell := block.Cellbase()
	assert.NotNil(t, cell, "cellbase")
	assert.Equal(t, uint64(500000), cell.Output.Capacity, "capacity")
	assert.Equal(t, blockrecord.HashTypeType, cell.Output.Lock.HashType, "hash type")
	assert.Equal(t, blockrecord.Bytes{1, 2}, cell.Output.Lock.Args, "args")
	assert.Nil(t, cell.Output.Type, "type script")
	assert.Equal(t, 0, len(cell.Data), "data")
}
