// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rce - allow and deny list membership
//
// an output whose type script is the configured list script carries an
// SmtUpdate in the output type of its witness; the tree root is checked
// on chain so only the leaf presence is kept here
//
// keys:
//
//	0x00 ++ type args ++ item key - 0x01 for a member
//	0x20 ++ type script hash      - packed type script
//	0x10 ++ BE height ++ hash     - inserted keys ++ deleted keys
package rce

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// Name - of this index
const Name = "rce"

// Namespace - storage prefix of this index
var Namespace = storage.NewNamespace('R', Name)

var present = []byte{0x01}

// Tracker - the membership index
type Tracker struct {
	log    *logger.L
	config *extension.Config
}

// New - create a tracker
func New(config *extension.Config) *Tracker {
	return &Tracker{
		log:    logger.New(Name),
		config: config,
	}
}

// Name - implements extension.Extension
func (t *Tracker) Name() string {
	return Name
}

// Namespace - implements extension.Extension
func (t *Tracker) Namespace() storage.Namespace {
	return Namespace
}

// MemberKey - args ++ item key
func MemberKey(args []byte, key blockdigest.Digest) []byte {
	return extension.AddressKey(append(append([]byte{}, args...), key[:]...))
}

// state of one key before and after the block
type change struct {
	before bool
	after  bool
	value  []byte
}

// Append - apply every update item and record the net changes
func (t *Tracker) Append(w storage.Writer, block *blockrecord.Block) error {
	changes := make(map[string]*change)

	// only the first sighting reads the store so before is the state
	// prior to the block
	track := func(key []byte, after bool, value []byte) error {
		c, ok := changes[string(key)]
		if !ok {
			before, err := w.Has(key)
			if nil != err {
				return err
			}
			c = &change{before: before}
			changes[string(key)] = c
		}
		c.after = after
		c.value = value
		return nil
	}

	for _, tx := range block.Transactions {
		for i := range tx.Outputs {
			typeScript := tx.Outputs[i].Type
			if !t.config.Matches(extension.RCEType, typeScript) {
				continue
			}
			update, err := witnessUpdate(&tx, i)
			if nil != err {
				return err
			}

			hash := typeScript.Hash()
			if err := track(extension.ScriptHashKey(hash[:]), true, typeScript.Pack()); nil != err {
				return err
			}

			for _, item := range update.Items {
				if err := track(MemberKey(typeScript.Args, item.Key), item.Present(), present); nil != err {
					return err
				}
			}
		}
	}

	rec := &record{
		inserted: make([][]byte, 0),
		deleted:  make([][]byte, 0),
	}
	keys := make([]string, 0, len(changes))
	for key := range changes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		c := changes[key]
		switch {
		case c.before == c.after:
			continue
		case c.after:
			w.Put([]byte(key), c.value)
			rec.inserted = append(rec.inserted, []byte(key))
		default:
			w.Delete([]byte(key))
			rec.deleted = append(rec.deleted, []byte(key))
		}
	}

	w.Put(extension.BlockKey(block.Header.Number, block.Header.Hash), rec.pack())
	t.log.Debugf("block: %d  inserted: %d  deleted: %d", block.Header.Number, len(rec.inserted), len(rec.deleted))
	return nil
}

// the SmtUpdate in the witness of output i
func witnessUpdate(tx *blockrecord.Transaction, i int) (*Update, error) {
	if i >= len(tx.Witnesses) || 0 == len(tx.Witnesses[i]) {
		return nil, fmt.Errorf("%w: transaction: %s  output: %d  missing witness", fault.ErrInvalidWitness, tx.Hash, i)
	}
	args, err := blockrecord.UnpackWitnessArgs(tx.Witnesses[i])
	if nil != err {
		return nil, fmt.Errorf("%w: transaction: %s  output: %d  %s", fault.ErrInvalidWitness, tx.Hash, i, err)
	}
	if nil == args.OutputType {
		return nil, fmt.Errorf("%w: transaction: %s  output: %d  no output type", fault.ErrInvalidWitness, tx.Hash, i)
	}
	update, err := UnpackUpdate(args.OutputType)
	if nil != err {
		return nil, fmt.Errorf("%w: transaction: %s  output: %d  %s", fault.ErrInvalidWitness, tx.Hash, i, err)
	}
	return update, nil
}

// Rollback - delete inserted keys and restore deleted members
func (t *Tracker) Rollback(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest) error {
	packed, err := extension.RollbackRecord(w, tipNumber, tipHash)
	if nil != err {
		return err
	}
	rec, err := unpackRecord(packed)
	if nil != err {
		return err
	}
	for _, key := range rec.inserted {
		w.Delete(key)
	}
	for _, key := range rec.deleted {
		if !bytes.HasPrefix(key, extension.KindAddress.Prefix()) {
			return fmt.Errorf("%w: restore of non member key: %x", fault.ErrInvalidRecord, key)
		}
		w.Put(key, present)
	}
	w.Delete(extension.BlockKey(tipNumber, tipHash))

	t.log.Debugf("rollback block: %d  removed: %d  restored: %d", tipNumber, len(rec.inserted), len(rec.deleted))
	return nil
}

// Prune - drop old records
func (t *Tracker) Prune(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest, keepDepth uint64) error {
	n, err := extension.PruneBlocks(w, tipNumber, keepDepth)
	if nil != err {
		return err
	}
	t.log.Debugf("pruned: %d records below: %d", n, tipNumber)
	return nil
}

// Contains - membership of key in the list named by args, r is scoped
// to the namespace
func Contains(r storage.Reader, args []byte, key blockdigest.Digest) (bool, error) {
	return r.Has(MemberKey(args, key))
}

// Script - a list type script by hash, nil if unknown
func Script(r storage.Reader, hash blockdigest.Digest) (*blockrecord.Script, error) {
	value, err := r.Get(extension.ScriptHashKey(hash[:]))
	if nil != err || nil == value {
		return nil, err
	}
	return blockrecord.UnpackScript(value)
}
