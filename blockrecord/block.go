// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/fault"
)

// EpochLength - bytes in a packed epoch
const EpochLength = 24

// Epoch - an epoch number with the fractional position of a block
// within it: Number + Index/Length
type Epoch struct {
	Number uint64 `json:"number"`
	Index  uint64 `json:"index"`
	Length uint64 `json:"length"`
}

// numerator and denominator of the rational value
func (e Epoch) rational() (*uint256.Int, *uint256.Int) {
	length := e.Length
	if 0 == length {
		length = 1
	}
	n := new(uint256.Int).Mul(uint256.NewInt(e.Number), uint256.NewInt(length))
	n.Add(n, uint256.NewInt(e.Index))
	return n, uint256.NewInt(length)
}

// Cmp - compare two epochs as rational numbers
func (e Epoch) Cmp(other Epoch) int {
	n1, d1 := e.rational()
	n2, d2 := other.rational()
	lhs := new(uint256.Int).Mul(n1, d2)
	rhs := new(uint256.Int).Mul(n2, d1)
	return lhs.Cmp(rhs)
}

// Less - strictly earlier
func (e Epoch) Less(other Epoch) bool {
	return e.Cmp(other) < 0
}

// Sub - go back a whole number of epochs, false if that is before
// the start of the chain
func (e Epoch) Sub(epochs uint64) (Epoch, bool) {
	if e.Number < epochs {
		return Epoch{}, false
	}
	e.Number -= epochs
	return e, true
}

// Pack - 3 big endian uint64
func (e Epoch) Pack() []byte {
	buffer := make([]byte, EpochLength)
	binary.BigEndian.PutUint64(buffer[0:], e.Number)
	binary.BigEndian.PutUint64(buffer[8:], e.Index)
	binary.BigEndian.PutUint64(buffer[16:], e.Length)
	return buffer
}

// EpochFromBytes - reverse of Pack
func EpochFromBytes(buffer []byte) (Epoch, error) {
	if EpochLength != len(buffer) {
		return Epoch{}, fault.ErrInvalidLength
	}
	return Epoch{
		Number: binary.BigEndian.Uint64(buffer[0:]),
		Index:  binary.BigEndian.Uint64(buffer[8:]),
		Length: binary.BigEndian.Uint64(buffer[16:]),
	}, nil
}

// String - N+I/L
func (e Epoch) String() string {
	return fmt.Sprintf("%d+%d/%d", e.Number, e.Index, e.Length)
}

// Header - the fields of a block header the indexer needs
type Header struct {
	Number     uint64             `json:"number"`
	Hash       blockdigest.Digest `json:"hash"`
	ParentHash blockdigest.Digest `json:"parent_hash"`
	Epoch      Epoch              `json:"epoch"`
}

// HeaderLength - bytes in a packed header
const HeaderLength = 8 + 2*blockdigest.Length + EpochLength

// Pack - number ++ hash ++ parent hash ++ epoch
func (h *Header) Pack() []byte {
	buffer := make([]byte, 0, HeaderLength)
	buffer = appendUint64(buffer, h.Number)
	buffer = append(buffer, h.Hash[:]...)
	buffer = append(buffer, h.ParentHash[:]...)
	return append(buffer, h.Epoch.Pack()...)
}

// HeaderFromBytes - reverse of Pack
func HeaderFromBytes(buffer []byte) (*Header, error) {
	if HeaderLength != len(buffer) {
		return nil, fault.ErrInvalidLength
	}
	h := &Header{
		Number: binary.BigEndian.Uint64(buffer),
	}
	copy(h.Hash[:], buffer[8:])
	copy(h.ParentHash[:], buffer[8+blockdigest.Length:])
	epoch, err := EpochFromBytes(buffer[8+2*blockdigest.Length:])
	if nil != err {
		return nil, err
	}
	h.Epoch = epoch
	return h, nil
}

// Transaction - inputs, outputs and witnesses of one transaction
type Transaction struct {
	Hash        blockdigest.Digest `json:"hash"`
	Inputs      []CellInput        `json:"inputs"`
	Outputs     []CellOutput       `json:"outputs"`
	OutputsData []Bytes            `json:"outputs_data"`
	Witnesses   []Bytes            `json:"witnesses"`
}

// Block - header and transactions
type Block struct {
	Header       Header        `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

// BlockFromJSON - decode a block
func BlockFromJSON(buffer []byte) (*Block, error) {
	block := &Block{}
	if err := json.Unmarshal(buffer, block); nil != err {
		return nil, err
	}
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if len(tx.OutputsData) > len(tx.Outputs) {
			return nil, fmt.Errorf("%w: transaction %s has more data than outputs", fault.ErrInvalidRecord, tx.Hash)
		}
	}
	return block, nil
}

// IsGenesis - the first block of the chain
func (block *Block) IsGenesis() bool {
	return 0 == block.Header.Number
}

// Cell - the detailed form of one output of this block
func (block *Block) Cell(txIndex int, outputIndex int) *DetailedCell {
	tx := &block.Transactions[txIndex]
	var data Bytes
	if outputIndex < len(tx.OutputsData) {
		data = cloneBytes(tx.OutputsData[outputIndex])
	}
	return &DetailedCell{
		BlockNumber: block.Header.Number,
		BlockHash:   block.Header.Hash,
		TxIndex:     uint32(txIndex),
		OutPoint: OutPoint{
			TxHash: tx.Hash,
			Index:  uint32(outputIndex),
		},
		Output: tx.Outputs[outputIndex],
		Data:   data,
	}
}

// Cellbase - the first output of the cellbase transaction, nil if none
func (block *Block) Cellbase() *DetailedCell {
	if 0 == len(block.Transactions) || 0 == len(block.Transactions[0].Outputs) {
		return nil
	}
	return block.Cell(0, 0)
}
