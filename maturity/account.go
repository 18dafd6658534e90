// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package maturity

import (
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// EntryLength - packed epoch ++ amount
const EntryLength = blockrecord.EpochLength + 8

// Entry - an immature cellbase reward
type Entry struct {
	Epoch  blockrecord.Epoch `json:"epoch"`
	Amount uint64            `json:"amount"`
}

// Pack - epoch ++ BE amount
func (e Entry) Pack() []byte {
	return extension.AppendUint64(e.Epoch.Pack(), e.Amount)
}

// Equal - same epoch fields and amount
func (e Entry) Equal(other Entry) bool {
	return e.Epoch == other.Epoch && e.Amount == other.Amount
}

func unpackEntry(d *extension.Decoder) Entry {
	epoch, _ := blockrecord.EpochFromBytes(d.Fixed(blockrecord.EpochLength))
	return Entry{
		Epoch:  epoch,
		Amount: d.Uint64(),
	}
}

// EntryFromBytes - reverse of Pack
func EntryFromBytes(buffer []byte) (Entry, error) {
	d := extension.NewDecoder(buffer)
	e := unpackEntry(d)
	return e, d.Finish()
}

// Account - matured total and immature entries, oldest first
type Account struct {
	Matured uint64  `json:"matured"`
	Queue   []Entry `json:"queue"`
}

// Immature - sum of the queue
func (a *Account) Immature() uint64 {
	total := uint64(0)
	for _, e := range a.Queue {
		total += e.Amount
	}
	return total
}

func (a *Account) isEmpty() bool {
	return 0 == a.Matured && 0 == len(a.Queue)
}

// Pack - BE matured ++ u32 count ++ entries
func (a *Account) Pack() []byte {
	buffer := extension.AppendUint64(nil, a.Matured)
	buffer = extension.AppendUint32(buffer, uint32(len(a.Queue)))
	for _, e := range a.Queue {
		buffer = append(buffer, e.Pack()...)
	}
	return buffer
}

// AccountFromBytes - reverse of Pack
func AccountFromBytes(buffer []byte) (*Account, error) {
	d := extension.NewDecoder(buffer)
	a := &Account{
		Matured: d.Uint64(),
		Queue:   make([]Entry, 0),
	}
	n := d.Uint32()
	for i := uint32(0); i < n && nil == d.Err(); i += 1 {
		a.Queue = append(a.Queue, unpackEntry(d))
	}
	if err := d.Finish(); nil != err {
		return nil, err
	}
	return a, nil
}

// GetAccount - an empty account for an unknown lock hash, r is scoped
// to the namespace
func GetAccount(r storage.Reader, lockHash []byte) (*Account, error) {
	value, err := r.Get(extension.AddressKey(lockHash))
	if nil != err {
		return nil, err
	}
	if nil == value {
		return &Account{Queue: make([]Entry, 0)}, nil
	}
	if len(value) < 12 {
		return nil, fault.ErrInvalidRecord
	}
	return AccountFromBytes(value)
}

func putAccount(w storage.Writer, lockHash []byte, a *Account) {
	key := extension.AddressKey(lockHash)
	if a.isEmpty() {
		w.Delete(key)
		return
	}
	w.Put(key, a.Pack())
}
