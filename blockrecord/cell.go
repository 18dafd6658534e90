// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/fault"
)

// OutPointLength - bytes in a packed out-point
const OutPointLength = blockdigest.Length + 4

// OutPoint - names a cell by the transaction that created it
type OutPoint struct {
	TxHash blockdigest.Digest `json:"tx_hash"`
	Index  uint32             `json:"index"`
}

// PackedOutPoint - fixed size binary out-point
type PackedOutPoint [OutPointLength]byte

// Pack - tx hash ++ big endian index, so packed out-points sort by
// transaction then output
func (o OutPoint) Pack() PackedOutPoint {
	var p PackedOutPoint
	copy(p[:], o.TxHash[:])
	binary.BigEndian.PutUint32(p[blockdigest.Length:], o.Index)
	return p
}

// Unpack - convert back to an out-point
func (p PackedOutPoint) Unpack() OutPoint {
	o := OutPoint{
		Index: binary.BigEndian.Uint32(p[blockdigest.Length:]),
	}
	copy(o.TxHash[:], p[:blockdigest.Length])
	return o
}

// OutPointFromBytes - validate and convert a packed slice
func OutPointFromBytes(buffer []byte) (OutPoint, error) {
	if OutPointLength != len(buffer) {
		return OutPoint{}, fault.ErrInvalidLength
	}
	var p PackedOutPoint
	copy(p[:], buffer)
	return p.Unpack(), nil
}

// String - for log messages
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxHash, o.Index)
}

// CellInput - a reference to the cell being consumed
type CellInput struct {
	PreviousOutput OutPoint `json:"previous_output"`
}

// CellOutput - the cell fields other than data
type CellOutput struct {
	Capacity uint64  `json:"capacity"`
	Lock     Script  `json:"lock"`
	Type     *Script `json:"type"`
}

// DetailedCell - a cell as it was created on-chain
type DetailedCell struct {
	BlockNumber uint64             `json:"block_number"`
	BlockHash   blockdigest.Digest `json:"block_hash"`
	TxIndex     uint32             `json:"tx_index"`
	OutPoint    OutPoint           `json:"out_point"`
	Output      CellOutput         `json:"output"`
	Data        Bytes              `json:"data"`
}

// Pack - deterministic binary form of a cell
func (cell *DetailedCell) Pack() []byte {
	buffer := make([]byte, 0, 128+len(cell.Data))
	buffer = appendUint64(buffer, cell.BlockNumber)
	buffer = append(buffer, cell.BlockHash[:]...)
	buffer = appendUint32(buffer, cell.TxIndex)
	p := cell.OutPoint.Pack()
	buffer = append(buffer, p[:]...)
	buffer = appendUint64(buffer, cell.Output.Capacity)
	buffer = appendBytes(buffer, cell.Output.Lock.Pack())
	if nil == cell.Output.Type {
		buffer = append(buffer, 0)
	} else {
		buffer = append(buffer, 1)
		buffer = appendBytes(buffer, cell.Output.Type.Pack())
	}
	return appendBytes(buffer, cell.Data)
}

// UnpackDetailedCell - decode a cell from the front of a buffer and
// return the remaining bytes
func UnpackDetailedCell(buffer []byte) (*DetailedCell, []byte, error) {
	r := reader{buffer: buffer}

	cell := &DetailedCell{
		BlockNumber: r.uint64(),
	}
	copy(cell.BlockHash[:], r.fixed(blockdigest.Length))
	cell.TxIndex = r.uint32()
	var p PackedOutPoint
	copy(p[:], r.fixed(OutPointLength))
	cell.OutPoint = p.Unpack()
	cell.Output.Capacity = r.uint64()
	lock := r.bytes()
	hasType := r.fixed(1)
	var typeScript []byte
	if nil != hasType && 1 == hasType[0] {
		typeScript = r.bytes()
	}
	cell.Data = cloneBytes(r.bytes())

	if nil != r.err {
		return nil, nil, r.err
	}

	s, err := UnpackScript(lock)
	if nil != err {
		return nil, nil, err
	}
	cell.Output.Lock = *s

	if nil != typeScript {
		cell.Output.Type, err = UnpackScript(typeScript)
		if nil != err {
			return nil, nil, err
		}
	}
	return cell, r.buffer, nil
}

// Equal - byte for byte comparison of the packed forms
func (cell *DetailedCell) Equal(other *DetailedCell) bool {
	return bytes.Equal(cell.Pack(), other.Pack())
}

// copy of a byte slice, empty becomes nil
func cloneBytes(b []byte) Bytes {
	if 0 == len(b) {
		return nil
	}
	return append(Bytes{}, b...)
}

func appendUint64(buffer []byte, n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return append(buffer, b[:]...)
}

func appendUint32(buffer []byte, n uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	return append(buffer, b[:]...)
}

func appendBytes(buffer []byte, data []byte) []byte {
	buffer = appendUint32(buffer, uint32(len(data)))
	return append(buffer, data...)
}

// sequential reader that records the first error
type reader struct {
	buffer []byte
	err    error
}

func (r *reader) fixed(n int) []byte {
	if nil != r.err {
		return nil
	}
	if len(r.buffer) < n {
		r.err = fault.ErrInvalidRecord
		return nil
	}
	b := r.buffer[:n]
	r.buffer = r.buffer[n:]
	return b
}

func (r *reader) uint64() uint64 {
	b := r.fixed(8)
	if nil == b {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) uint32() uint32 {
	b := r.fixed(4)
	if nil == b {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) bytes() []byte {
	n := r.uint32()
	if nil != r.err {
		return nil
	}
	b := r.fixed(int(n))
	if nil == b && nil == r.err {
		return []byte{}
	}
	return b
}
