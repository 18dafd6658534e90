// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package balance

import (
	"github.com/holiman/uint256"

	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// Entry - a subject and its balance
type Entry struct {
	Subject []byte
	Balance *uint256.Int
}

// Balance - zero for an unknown subject, r is scoped to the ledger's
// namespace
func Balance(r storage.Reader, subject []byte) (*uint256.Int, error) {
	value, err := r.Get(extension.AddressKey(subject))
	if nil != err {
		return nil, err
	}
	if len(value) > 32 {
		return nil, fault.ErrInvalidRecord
	}
	return new(uint256.Int).SetBytes(value), nil
}

// Balances - every non-zero balance whose subject starts with prefix,
// count <= 0 means no limit
func Balances(r storage.Reader, prefix []byte, count int) ([]Entry, error) {
	elements, err := storage.Collect(r.Iterator(extension.AddressKey(prefix), nil, storage.Forward), count)
	if nil != err {
		return nil, err
	}

	entries := make([]Entry, 0, len(elements))
	for _, e := range elements {
		if len(e.Value) > 32 {
			return nil, fault.ErrInvalidRecord
		}
		entries = append(entries, Entry{
			Subject: e.Key[1:],
			Balance: new(uint256.Int).SetBytes(e.Value),
		})
	}
	return entries, nil
}
