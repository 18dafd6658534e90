// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package balance

import (
	"sort"

	"github.com/holiman/uint256"

	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
)

// Deltas - signed change per subject, two's complement in 256 bits so
// no realistic block can overflow the accumulation
type Deltas map[string]*uint256.Int

// Add - credit a subject
func (d Deltas) Add(subject []byte, amount *uint256.Int) {
	current, ok := d[string(subject)]
	if !ok {
		current = new(uint256.Int)
		d[string(subject)] = current
	}
	current.Add(current, amount)
}

// Sub - debit a subject
func (d Deltas) Sub(subject []byte, amount *uint256.Int) {
	current, ok := d[string(subject)]
	if !ok {
		current = new(uint256.Int)
		d[string(subject)] = current
	}
	current.Sub(current, amount)
}

// Compact - drop subjects whose changes cancelled out
func (d Deltas) Compact() {
	for subject, delta := range d {
		if delta.IsZero() {
			delete(d, subject)
		}
	}
}

// Negate - the inverse change
func (d Deltas) Negate() Deltas {
	n := make(Deltas, len(d))
	for subject, delta := range d {
		n[subject] = new(uint256.Int).Neg(delta)
	}
	return n
}

// Subjects - in ascending byte order
func (d Deltas) Subjects() []string {
	subjects := make([]string, 0, len(d))
	for subject := range d {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects
}

// Pack - u32 count ++ sorted (u8 length ++ subject ++ 32 byte delta)
func (d Deltas) Pack() []byte {
	buffer := extension.AppendUint32(nil, uint32(len(d)))
	for _, subject := range d.Subjects() {
		buffer = append(buffer, byte(len(subject)))
		buffer = append(buffer, subject...)
		delta := d[subject].Bytes32()
		buffer = append(buffer, delta[:]...)
	}
	return buffer
}

// UnpackDeltas - reverse of Pack
func UnpackDeltas(buffer []byte) (Deltas, error) {
	decoder := extension.NewDecoder(buffer)
	n := decoder.Uint32()

	d := make(Deltas)
	for i := uint32(0); i < n && nil == decoder.Err(); i += 1 {
		subject := decoder.Fixed(int(decoder.Uint8()))
		delta := decoder.Fixed(32)
		if nil != decoder.Err() {
			break
		}
		if _, ok := d[string(subject)]; ok {
			return nil, fault.ErrInvalidRecord
		}
		d[string(subject)] = new(uint256.Int).SetBytes(delta)
	}
	if err := decoder.Finish(); nil != err {
		return nil, err
	}
	return d, nil
}

// signed decimal of a two's complement value
func signedString(n *uint256.Int) string {
	if n.Sign() < 0 {
		return "-" + new(uint256.Int).Neg(n).Dec()
	}
	return n.Dec()
}
