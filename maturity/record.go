// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package maturity

import (
	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/extension"
)

// due - one entry of the shared queue
type due struct {
	height  uint64
	subject blockdigest.Digest
	entry   Entry
}

func (d due) key() []byte {
	return extension.DueKey(d.height, d.subject[:])
}

// rollback data for one block
//
//	u8 pushed ++ [subject ++ entry]
//	u32 count ++ count * (BE height ++ subject ++ entry)
type record struct {
	pushed  *due
	matured []due
}

func (r *record) pack() []byte {
	buffer := make([]byte, 0, 64)
	if nil == r.pushed {
		buffer = append(buffer, 0)
	} else {
		buffer = append(buffer, 1)
		buffer = append(buffer, r.pushed.subject[:]...)
		buffer = append(buffer, r.pushed.entry.Pack()...)
	}
	buffer = extension.AppendUint32(buffer, uint32(len(r.matured)))
	for _, m := range r.matured {
		buffer = extension.AppendUint64(buffer, m.height)
		buffer = append(buffer, m.subject[:]...)
		buffer = append(buffer, m.entry.Pack()...)
	}
	return buffer
}

// pushed height is the block's own
func unpackRecord(buffer []byte, number uint64) (*record, error) {
	d := extension.NewDecoder(buffer)
	r := &record{
		matured: make([]due, 0),
	}

	if 1 == d.Uint8() {
		p := &due{height: number}
		copy(p.subject[:], d.Fixed(blockdigest.Length))
		p.entry = unpackEntry(d)
		r.pushed = p
	}

	n := d.Uint32()
	for i := uint32(0); i < n && nil == d.Err(); i += 1 {
		m := due{height: d.Uint64()}
		copy(m.subject[:], d.Fixed(blockdigest.Length))
		m.entry = unpackEntry(d)
		r.matured = append(r.matured, m)
	}

	if err := d.Finish(); nil != err {
		return nil, err
	}
	return r, nil
}
