// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/cellindexd/balance"
	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/cellstore"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/maturity"
	"github.com/bitmark-inc/cellindexd/processor"
	"github.com/bitmark-inc/cellindexd/rce"
	"github.com/bitmark-inc/cellindexd/scripthash"
	"github.com/bitmark-inc/cellindexd/specialcells"
)

type balanceReply struct {
	LockHash string `json:"lock_hash"`
	Balance  string `json:"balance"`
}

type tokenBalanceReply struct {
	TypeHash string `json:"type_hash"`
	LockHash string `json:"lock_hash"`
	Balance  string `json:"balance"`
}

type maturityReply struct {
	LockHash string           `json:"lock_hash"`
	Matured  uint64           `json:"matured"`
	Immature uint64           `json:"immature"`
	Queue    []maturity.Entry `json:"queue"`
}

type allowedReply struct {
	Args    string             `json:"args"`
	Key     blockdigest.Digest `json:"key"`
	Allowed bool               `json:"allowed"`
}

func runTip(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	tip, err := processor.Tip(m.snapshot)
	if nil != err {
		return err
	}
	if nil == tip {
		return fault.ErrEmptyChain
	}
	return printJson(m.w, tip)
}

func runBalance(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	lockHash, err := digestArgument(c, "lock-hash")
	if nil != err {
		return err
	}

	b, err := balance.Balance(balance.NativeNamespace.Reader(m.snapshot), lockHash[:])
	if nil != err {
		return err
	}

	return printJson(m.w, balanceReply{
		LockHash: lockHash.String(),
		Balance:  b.ToBig().String(),
	})
}

func runTokenBalance(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	r := balance.TokenNamespace.Reader(m.snapshot)

	typeHash, err := digestArgument(c, "type-hash")
	if nil != err {
		return err
	}

	if "" != c.String("lock-hash") {
		lockHash, err := digestArgument(c, "lock-hash")
		if nil != err {
			return err
		}
		b, err := balance.Balance(r, balance.TokenSubject(typeHash, lockHash))
		if nil != err {
			return err
		}
		return printJson(m.w, []tokenBalanceReply{{
			TypeHash: typeHash.String(),
			LockHash: lockHash.String(),
			Balance:  b.ToBig().String(),
		}})
	}

	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("invalid count: %d", count)
	}
	if m.verbose {
		fmt.Fprintf(m.e, "type hash: %s\n", typeHash)
		fmt.Fprintf(m.e, "count: %d\n", count)
	}

	entries, err := balance.Balances(r, typeHash[:], count)
	if nil != err {
		return err
	}

	replies := make([]tokenBalanceReply, 0, len(entries))
	for _, e := range entries {
		lockHash := blockdigest.Digest{}
		if err := blockdigest.DigestFromBytes(&lockHash, e.Subject[blockdigest.Length:]); nil != err {
			return err
		}
		replies = append(replies, tokenBalanceReply{
			TypeHash: typeHash.String(),
			LockHash: lockHash.String(),
			Balance:  e.Balance.ToBig().String(),
		})
	}
	return printJson(m.w, replies)
}

func runCells(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	keyHash, err := hexArgument(c, "key-hash")
	if nil != err {
		return err
	}
	if specialcells.KeyHashLength != len(keyHash) {
		return fmt.Errorf("key hash: %x must be %d bytes", keyHash, specialcells.KeyHashLength)
	}

	cells, err := specialcells.Cells(specialcells.Namespace.Reader(m.snapshot), keyHash)
	if nil != err {
		return err
	}
	return printJson(m.w, cells)
}

func runMaturity(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	lockHash, err := digestArgument(c, "lock-hash")
	if nil != err {
		return err
	}

	account, err := maturity.GetAccount(maturity.Namespace.Reader(m.snapshot), lockHash[:])
	if nil != err {
		return err
	}

	return printJson(m.w, maturityReply{
		LockHash: lockHash.String(),
		Matured:  account.Matured,
		Immature: account.Immature(),
		Queue:    account.Queue,
	})
}

func runAllowed(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	args, err := hexArgument(c, "args")
	if nil != err {
		return err
	}
	key, err := digestArgument(c, "key")
	if nil != err {
		return err
	}

	allowed, err := rce.Contains(rce.Namespace.Reader(m.snapshot), args, key)
	if nil != err {
		return err
	}

	return printJson(m.w, allowedReply{
		Args:    "0x" + hex.EncodeToString(args),
		Key:     key,
		Allowed: allowed,
	})
}

func runTransaction(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	hash, err := digestArgument(c, "hash")
	if nil != err {
		return err
	}

	location, err := scripthash.Transaction(scripthash.Namespace.Reader(m.snapshot), hash)
	if nil != err {
		return err
	}
	if nil == location {
		return fmt.Errorf("transaction: %s not indexed", hash)
	}
	return printJson(m.w, location)
}

func runScript(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	shortHash, err := hexArgument(c, "short-hash")
	if nil != err {
		return err
	}
	if blockdigest.ShortLength != len(shortHash) {
		return fmt.Errorf("short hash: %x must be %d bytes", shortHash, blockdigest.ShortLength)
	}

	script, err := scripthash.Script(scripthash.Namespace.Reader(m.snapshot), shortHash)
	if nil != err {
		return err
	}
	if nil == script {
		return fmt.Errorf("script: %x not indexed", shortHash)
	}
	return printJson(m.w, script)
}

func runCell(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	txHash, err := digestArgument(c, "tx-hash")
	if nil != err {
		return err
	}
	index := c.Int("index")
	if index < 0 {
		return fmt.Errorf("invalid index: %d", index)
	}

	outPoint := blockrecord.OutPoint{
		TxHash: txHash,
		Index:  uint32(index),
	}
	cell, err := cellstore.Cell(cellstore.Namespace.Reader(m.snapshot), outPoint)
	if nil != err {
		return err
	}
	return printJson(m.w, cell)
}

// hex with or without 0x
func hexArgument(c *cli.Context, name string) ([]byte, error) {
	s := strings.TrimSpace(c.String(name))
	if "" == s {
		return nil, fmt.Errorf("%s is required", name)
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if nil != err {
		return nil, fmt.Errorf("%s: %q  error: %s", name, c.String(name), err)
	}
	return b, nil
}

func digestArgument(c *cli.Context, name string) (blockdigest.Digest, error) {
	digest := blockdigest.Digest{}
	s := strings.TrimSpace(c.String(name))
	if "" == s {
		return digest, fmt.Errorf("%s is required", name)
	}
	if err := digest.UnmarshalText([]byte(s)); nil != err {
		return digest, fmt.Errorf("%s: %q  error: %s", name, s, err)
	}
	return digest, nil
}
