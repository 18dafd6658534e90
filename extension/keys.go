// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package extension

import (
	"encoding/binary"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/fault"
)

// Kind - first byte of a key inside a namespace
type Kind byte

// key kinds
const (
	KindAddress     Kind = 0
	KindBlock       Kind = 16
	KindScriptHash  Kind = 32
	KindDue         Kind = 48
	KindTransaction Kind = 64
	KindCell        Kind = 80
)

// BlockKeyLength - kind ++ height ++ hash
const BlockKeyLength = 1 + 8 + blockdigest.Length

// Prefix - the one byte prefix of all keys of a kind
func (k Kind) Prefix() []byte {
	return []byte{byte(k)}
}

// Key - kind ++ payload
func (k Kind) Key(payload ...[]byte) []byte {
	n := 1
	for _, p := range payload {
		n += len(p)
	}
	key := make([]byte, 1, n)
	key[0] = byte(k)
	for _, p := range payload {
		key = append(key, p...)
	}
	return key
}

// AddressKey - running state of a subject
func AddressKey(subject []byte) []byte {
	return KindAddress.Key(subject)
}

// BlockKey - rollback record of a block, sorted by height
func BlockKey(number uint64, hash blockdigest.Digest) []byte {
	return KindBlock.Key(uint64Bytes(number), hash[:])
}

// ParseBlockKey - height and hash from a block key
func ParseBlockKey(key []byte) (uint64, blockdigest.Digest, error) {
	var hash blockdigest.Digest
	if BlockKeyLength != len(key) || byte(KindBlock) != key[0] {
		return 0, hash, fault.ErrInvalidBlockKey
	}
	copy(hash[:], key[9:])
	return binary.BigEndian.Uint64(key[1:9]), hash, nil
}

// ScriptHashKey - script stored by its hash
func ScriptHashKey(hash []byte) []byte {
	return KindScriptHash.Key(hash)
}

// DueKey - maturity queue entry, sorted by origin height
func DueKey(number uint64, subject []byte) []byte {
	return KindDue.Key(uint64Bytes(number), subject)
}

// TransactionKey - location of a transaction
func TransactionKey(hash blockdigest.Digest) []byte {
	return KindTransaction.Key(hash[:])
}

// CellKey - live cell by out-point
func CellKey(outPoint blockrecord.OutPoint) []byte {
	p := outPoint.Pack()
	return KindCell.Key(p[:])
}

func uint64Bytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
