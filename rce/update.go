// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rce

import (
	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
)

// ItemLength - key ++ values byte
const ItemLength = blockdigest.Length + 1

// UpdateItem - one leaf change of the sparse Merkle tree
type UpdateItem struct {
	Key    blockdigest.Digest
	Values byte
}

// Present - the low nibble of values is 1 for a member
func (i UpdateItem) Present() bool {
	return 1 == i.Values&0x0f
}

// Update - the SmtUpdate carried in a witness output type
type Update struct {
	Items []UpdateItem
	Proof []byte
}

// Pack - molecule table {update: fixvec of items, proof: bytes}
func (u *Update) Pack() []byte {
	items := make([]byte, 0, len(u.Items)*ItemLength)
	for _, item := range u.Items {
		items = append(items, item.Key[:]...)
		items = append(items, item.Values)
	}
	return blockrecord.PackTable(blockrecord.PackFixVec(items, len(u.Items)), blockrecord.PackBytes(u.Proof))
}

// UnpackUpdate - decode an SmtUpdate
func UnpackUpdate(data []byte) (*Update, error) {
	fields, err := blockrecord.UnpackTable(data, 2)
	if nil != err {
		return nil, err
	}
	items, err := blockrecord.UnpackFixVec(fields[0], ItemLength)
	if nil != err {
		return nil, err
	}
	proof, err := blockrecord.UnpackBytes(fields[1])
	if nil != err {
		return nil, err
	}

	u := &Update{
		Items: make([]UpdateItem, 0, len(items)/ItemLength),
		Proof: append([]byte{}, proof...),
	}
	for i := 0; i < len(items); i += ItemLength {
		item := UpdateItem{
			Values: items[i+blockdigest.Length],
		}
		copy(item.Key[:], items[i:i+blockdigest.Length])
		u.Items = append(u.Items, item)
	}
	return u, nil
}
