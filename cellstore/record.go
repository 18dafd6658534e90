// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cellstore

import (
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
)

// rollback data for one block
//
//	u32 count ++ count * packed out-point
//	u32 count ++ count * (u32 length ++ packed cell)
type record struct {
	created []blockrecord.PackedOutPoint
	spent   []*blockrecord.DetailedCell
}

// a cell created and spent in the same block is in neither list
func (r *record) removeCreated(p blockrecord.PackedOutPoint) {
	for i, c := range r.created {
		if c == p {
			r.created = append(r.created[:i], r.created[i+1:]...)
			return
		}
	}
}

func (r *record) pack() []byte {
	buffer := extension.AppendUint32(nil, uint32(len(r.created)))
	for _, p := range r.created {
		buffer = append(buffer, p[:]...)
	}
	buffer = extension.AppendUint32(buffer, uint32(len(r.spent)))
	for _, cell := range r.spent {
		packed := cell.Pack()
		buffer = extension.AppendUint32(buffer, uint32(len(packed)))
		buffer = append(buffer, packed...)
	}
	return buffer
}

func unpackRecord(buffer []byte) (*record, error) {
	d := extension.NewDecoder(buffer)
	r := &record{
		created: make([]blockrecord.PackedOutPoint, 0),
		spent:   make([]*blockrecord.DetailedCell, 0),
	}

	n := d.Uint32()
	for i := uint32(0); i < n && nil == d.Err(); i += 1 {
		var p blockrecord.PackedOutPoint
		copy(p[:], d.Fixed(blockrecord.OutPointLength))
		r.created = append(r.created, p)
	}

	n = d.Uint32()
	for i := uint32(0); i < n && nil == d.Err(); i += 1 {
		packed := d.Fixed(int(d.Uint32()))
		if nil != d.Err() {
			break
		}
		cell, err := unpackCell(packed)
		if nil != err {
			return nil, err
		}
		r.spent = append(r.spent, cell)
	}

	if err := d.Finish(); nil != err {
		return nil, err
	}
	return r, nil
}
