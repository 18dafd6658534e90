// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package extension

import (
	"encoding/binary"

	"github.com/bitmark-inc/cellindexd/fault"
)

// AppendUint32 - big endian
func AppendUint32(buffer []byte, n uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	return append(buffer, b[:]...)
}

// AppendUint64 - big endian
func AppendUint64(buffer []byte, n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return append(buffer, b[:]...)
}

// Decoder - sequential reader of a record, the first error sticks
// and later reads return zero values
type Decoder struct {
	buffer []byte
	err    error
}

// NewDecoder - read from buffer
func NewDecoder(buffer []byte) *Decoder {
	return &Decoder{buffer: buffer}
}

// Fixed - the next n bytes
func (d *Decoder) Fixed(n int) []byte {
	if nil != d.err {
		return nil
	}
	if n < 0 || len(d.buffer) < n {
		d.err = fault.ErrInvalidRecord
		return nil
	}
	b := d.buffer[:n:n]
	d.buffer = d.buffer[n:]
	return b
}

// Uint8 - one byte
func (d *Decoder) Uint8() uint8 {
	b := d.Fixed(1)
	if nil == b {
		return 0
	}
	return b[0]
}

// Uint32 - big endian
func (d *Decoder) Uint32() uint32 {
	b := d.Fixed(4)
	if nil == b {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Uint64 - big endian
func (d *Decoder) Uint64() uint64 {
	b := d.Fixed(8)
	if nil == b {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// Rest - all remaining bytes
func (d *Decoder) Rest() []byte {
	return d.Fixed(len(d.buffer))
}

// Err - the first error
func (d *Decoder) Err() error {
	return d.err
}

// Remaining - count of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.buffer)
}

// Finish - the first error, or an error if bytes are left over
func (d *Decoder) Finish() error {
	if nil != d.err {
		return d.err
	}
	if 0 != len(d.buffer) {
		return fault.ErrInvalidRecord
	}
	return nil
}
