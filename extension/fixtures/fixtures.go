// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - scripts, blocks and store helpers for index tests
package fixtures

import (
	"encoding/binary"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
)

// code hashes of the test scripts
var (
	NativeLockCode  = blockdigest.NewDigest([]byte("native lock"))
	OtherLockCode   = blockdigest.NewDigest([]byte("other lock"))
	TokenTypeCode   = blockdigest.NewDigest([]byte("token type"))
	DepositLockCode = blockdigest.NewDigest([]byte("deposit lock"))
	ClaimLockCode   = blockdigest.NewDigest([]byte("claim lock"))
	RCETypeCode     = blockdigest.NewDigest([]byte("rce type"))
)

// Config - every pattern configured
func Config() *extension.Config {
	c, err := extension.NewConfig(map[string]extension.ScriptPattern{
		extension.NativeLock:  {CodeHash: NativeLockCode, HashType: blockrecord.HashTypeType},
		extension.TokenType:   {CodeHash: TokenTypeCode, HashType: blockrecord.HashTypeType},
		extension.DepositLock: {CodeHash: DepositLockCode, HashType: blockrecord.HashTypeType},
		extension.ClaimLock:   {CodeHash: ClaimLockCode, HashType: blockrecord.HashTypeType},
		extension.RCEType:     {CodeHash: RCETypeCode, HashType: blockrecord.HashTypeType},
	}, extension.DefaultMaturityEpochs)
	if nil != err {
		panic(err)
	}
	return c
}

// KeyHash - a 20 byte key hash filled with b
func KeyHash(b byte) []byte {
	h := make([]byte, blockdigest.ShortLength)
	for i := range h {
		h[i] = b
	}
	return h
}

// Lock - native lock owned by key hash b
func Lock(b byte) blockrecord.Script {
	return blockrecord.Script{
		CodeHash: NativeLockCode,
		HashType: blockrecord.HashTypeType,
		Args:     KeyHash(b),
	}
}

// OtherLock - a lock no pattern matches
func OtherLock(b byte) blockrecord.Script {
	return blockrecord.Script{
		CodeHash: OtherLockCode,
		HashType: blockrecord.HashTypeData,
		Args:     KeyHash(b),
	}
}

// TokenType - token identified by issuer b
func TokenType(b byte) *blockrecord.Script {
	return &blockrecord.Script{
		CodeHash: TokenTypeCode,
		HashType: blockrecord.HashTypeType,
		Args:     blockrecord.Bytes(KeyHash(b)),
	}
}

// DepositLock - deposit cell owned by key hash b
func DepositLock(b byte) blockrecord.Script {
	return blockrecord.Script{
		CodeHash: DepositLockCode,
		HashType: blockrecord.HashTypeType,
		Args:     KeyHash(b),
	}
}

// ClaimLock - claim cell for receiver r with fallback sender s
func ClaimLock(r byte, s byte) blockrecord.Script {
	return blockrecord.Script{
		CodeHash: ClaimLockCode,
		HashType: blockrecord.HashTypeType,
		Args:     append(KeyHash(r), KeyHash(s)...),
	}
}

// RCEType - allow/deny list type script with args
func RCEType(args []byte) *blockrecord.Script {
	return &blockrecord.Script{
		CodeHash: RCETypeCode,
		HashType: blockrecord.HashTypeType,
		Args:     args,
	}
}

// Output - an output and its data
type Output struct {
	Cell blockrecord.CellOutput
	Data []byte
}

// Out - plain capacity output
func Out(capacity uint64, lock blockrecord.Script) Output {
	return Output{
		Cell: blockrecord.CellOutput{Capacity: capacity, Lock: lock},
	}
}

// TokenOut - token output carrying a 16 byte little endian amount
func TokenOut(capacity uint64, lock blockrecord.Script, typeScript *blockrecord.Script, amount uint64) Output {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data, amount)
	return Output{
		Cell: blockrecord.CellOutput{Capacity: capacity, Lock: lock, Type: typeScript},
		Data: data,
	}
}

// Tx - a transaction whose hash is derived from name
func Tx(name string, inputs []blockrecord.OutPoint, outputs ...Output) blockrecord.Transaction {
	tx := blockrecord.Transaction{
		Hash:        blockdigest.NewDigest([]byte(name)),
		Inputs:      make([]blockrecord.CellInput, 0, len(inputs)),
		Outputs:     make([]blockrecord.CellOutput, 0, len(outputs)),
		OutputsData: make([]blockrecord.Bytes, 0, len(outputs)),
	}
	for _, input := range inputs {
		tx.Inputs = append(tx.Inputs, blockrecord.CellInput{PreviousOutput: input})
	}
	for _, output := range outputs {
		tx.Outputs = append(tx.Outputs, output.Cell)
		tx.OutputsData = append(tx.OutputsData, output.Data)
	}
	return tx
}

// Spend - the out-point of output index of a transaction
func Spend(tx blockrecord.Transaction, index uint32) blockrecord.OutPoint {
	return blockrecord.OutPoint{TxHash: tx.Hash, Index: index}
}

// Block - a block linked to parent, hash derived from its contents
func Block(number uint64, parent blockdigest.Digest, epoch blockrecord.Epoch, txs ...blockrecord.Transaction) *blockrecord.Block {
	buffer := make([]byte, 8, 8+blockdigest.Length*(1+len(txs)))
	binary.BigEndian.PutUint64(buffer, number)
	buffer = append(buffer, parent[:]...)
	for _, tx := range txs {
		buffer = append(buffer, tx.Hash[:]...)
	}
	return &blockrecord.Block{
		Header: blockrecord.Header{
			Number:     number,
			Hash:       blockdigest.NewDigest(buffer),
			ParentHash: parent,
			Epoch:      epoch,
		},
		Transactions: txs,
	}
}

// Epoch - whole epoch n
func Epoch(n uint64) blockrecord.Epoch {
	return blockrecord.Epoch{Number: n, Index: 0, Length: 1}
}
