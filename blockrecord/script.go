// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/fault"
)

// HashType - how a script's code hash refers to its code
type HashType byte

// the hash types
const (
	HashTypeData  HashType = 0
	HashTypeType  HashType = 1
	HashTypeData1 HashType = 2
)

var hashTypeNames = map[HashType]string{
	HashTypeData:  "data",
	HashTypeType:  "type",
	HashTypeData1: "data1",
}

// String - name of the hash type
func (h HashType) String() string {
	if s, ok := hashTypeNames[h]; ok {
		return s
	}
	return "unknown"
}

// MarshalText - hash type as its name
func (h HashType) MarshalText() ([]byte, error) {
	if _, ok := hashTypeNames[h]; !ok {
		return nil, fault.ErrInvalidScriptPattern
	}
	return []byte(h.String()), nil
}

// UnmarshalText - hash type from its name
func (h *HashType) UnmarshalText(s []byte) error {
	name := strings.ToLower(string(s))
	for k, v := range hashTypeNames {
		if v == name {
			*h = k
			return nil
		}
	}
	return fault.ErrInvalidScriptPattern
}

// Bytes - byte string that is hex encoded in JSON
type Bytes []byte

// MarshalText - 0x prefixed hex
func (b Bytes) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(b)), nil
}

// UnmarshalText - hex with or without 0x prefix
func (b *Bytes) UnmarshalText(s []byte) error {
	text := strings.TrimPrefix(strings.TrimPrefix(string(s), "0x"), "0X")
	buffer, err := hex.DecodeString(text)
	if nil != err {
		return err
	}
	*b = buffer
	return nil
}

// Script - a lock or type script
type Script struct {
	CodeHash blockdigest.Digest `json:"code_hash"`
	HashType HashType           `json:"hash_type"`
	Args     Bytes              `json:"args"`
}

// Pack - the molecule serialisation of a script
func (script *Script) Pack() []byte {
	return PackTable(script.CodeHash[:], []byte{byte(script.HashType)}, PackBytes(script.Args))
}

// UnpackScript - decode a molecule serialised script
func UnpackScript(data []byte) (*Script, error) {
	fields, err := UnpackTable(data, 3)
	if nil != err {
		return nil, err
	}
	if blockdigest.Length != len(fields[0]) || 1 != len(fields[1]) {
		return nil, fault.ErrInvalidMolecule
	}
	args, err := UnpackBytes(fields[2])
	if nil != err {
		return nil, err
	}

	script := &Script{
		HashType: HashType(fields[1][0]),
		Args:     cloneBytes(args),
	}
	copy(script.CodeHash[:], fields[0])
	return script, nil
}

// Hash - BLAKE2b-256 of the packed script
func (script *Script) Hash() blockdigest.Digest {
	return blockdigest.NewDigest(script.Pack())
}

// ShortHash - 160 bit BLAKE2b of the packed script
func (script *Script) ShortHash() [blockdigest.ShortLength]byte {
	return blockdigest.NewShortDigest(script.Pack())
}

// Equal - scripts are equal if all fields match
func (script *Script) Equal(other *Script) bool {
	if nil == script || nil == other {
		return script == other
	}
	return script.CodeHash == other.CodeHash &&
		script.HashType == other.HashType &&
		bytes.Equal(script.Args, other.Args)
}
