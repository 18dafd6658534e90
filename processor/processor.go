// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package processor - drives blocks through every extension in one
// batch per block
//
// keys:
//
//	0x00 ++ "tip"                 - packed header of the tip
//	0x10 ++ BE height ++ hash     - packed header
package processor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/messagebus"
	"github.com/bitmark-inc/cellindexd/storage"
)

// Name - of the processor metadata
const Name = "processor"

// Namespace - storage prefix of the processor metadata
var Namespace = storage.NewNamespace('P', Name)

var tipKey = extension.AddressKey([]byte("tip"))

// actions carried by an Event
const (
	Appended   = "appended"
	RolledBack = "rolled-back"
)

// Event - sent to the queue after each commit
type Event struct {
	Action string             `json:"action"`
	Number uint64             `json:"number"`
	Hash   blockdigest.Digest `json:"hash"`
}

// Processor - the orchestrator
type Processor struct {
	sync.Mutex

	log        *logger.L
	store      storage.Store
	keepDepth  uint64
	events     *messagebus.Queue
	extensions []extension.Extension
}

// New - extensions run in the given order on append and in reverse on
// rollback; events may be nil
func New(store storage.Store, keepDepth uint64, events *messagebus.Queue, extensions ...extension.Extension) (*Processor, error) {
	namespaces := []storage.Namespace{Namespace}
	for _, ext := range extensions {
		namespaces = append(namespaces, ext.Namespace())
	}
	if err := storage.ValidateNamespaces(namespaces...); nil != err {
		return nil, err
	}

	p := &Processor{
		log:        logger.New(Name),
		store:      store,
		keepDepth:  keepDepth,
		events:     events,
		extensions: extensions,
	}
	for _, ext := range extensions {
		p.log.Infof("extension: %s  namespace: %s", ext.Name(), ext.Namespace())
	}
	return p, nil
}

// Tip - the last applied header, nil for an empty chain
func (p *Processor) Tip() (*blockrecord.Header, error) {
	return Tip(p.store)
}

// Tip - from any reader of the whole store
func Tip(r storage.Reader) (*blockrecord.Header, error) {
	value, err := Namespace.Reader(r).Get(tipKey)
	if nil != err || nil == value {
		return nil, err
	}
	return blockrecord.HeaderFromBytes(value)
}

// Header - the stored header of a block
func Header(r storage.Reader, number uint64, hash blockdigest.Digest) (*blockrecord.Header, error) {
	value, err := Namespace.Reader(r).Get(extension.BlockKey(number, hash))
	if nil != err || nil == value {
		return nil, err
	}
	return blockrecord.HeaderFromBytes(value)
}

// Append - apply a block that extends the tip
func (p *Processor) Append(block *blockrecord.Block) error {
	p.Lock()
	defer p.Unlock()

	header := &block.Header
	tip, err := p.Tip()
	if nil != err {
		return err
	}
	switch {
	case nil == tip && 0 != header.Number:
		return fmt.Errorf("%w: empty chain needs genesis, got: %d", fault.ErrBlockNotLinked, header.Number)
	case nil != tip && (tip.Number+1 != header.Number || tip.Hash != header.ParentHash):
		return fmt.Errorf("%w: block: %d  parent: %s  tip: %d  hash: %s", fault.ErrBlockNotLinked, header.Number, header.ParentHash, tip.Number, tip.Hash)
	}

	batch, err := p.store.Begin()
	if nil != err {
		return err
	}

	for _, ext := range p.extensions {
		if err := ext.Append(ext.Namespace().Writer(batch), block); nil != err {
			batch.Abort()
			p.log.Errorf("append block: %d  extension: %s  error: %s", header.Number, ext.Name(), err)
			return fmt.Errorf("%s: %w", ext.Name(), err)
		}
	}

	w := Namespace.Writer(batch)
	packed := header.Pack()
	w.Put(extension.BlockKey(header.Number, header.Hash), packed)
	w.Put(tipKey, packed)

	if err := batch.Commit(); nil != err {
		p.log.Errorf("commit block: %d  error: %s", header.Number, err)
		return err
	}

	p.log.Infof("appended block: %d  hash: %s", header.Number, header.Hash)
	p.notify(Appended, header.Number, header.Hash)
	return nil
}

// Rollback - undo the tip block
//
// a missing rollback record means the store no longer matches the
// chain and the process halts
func (p *Processor) Rollback() error {
	p.Lock()
	defer p.Unlock()

	tip, err := p.Tip()
	if nil != err {
		return err
	}
	if nil == tip {
		return fault.ErrEmptyChain
	}

	batch, err := p.store.Begin()
	if nil != err {
		return err
	}

	for i := len(p.extensions) - 1; i >= 0; i -= 1 {
		ext := p.extensions[i]
		err := ext.Rollback(ext.Namespace().Writer(batch), tip.Number, tip.Hash)
		if nil == err {
			continue
		}
		batch.Abort()
		if errors.Is(err, fault.ErrRollbackRecordNotFound) {
			fault.Panicf("rollback block: %d  extension: %s  error: %s", tip.Number, ext.Name(), err)
		}
		p.log.Errorf("rollback block: %d  extension: %s  error: %s", tip.Number, ext.Name(), err)
		return fmt.Errorf("%s: %w", ext.Name(), err)
	}

	w := Namespace.Writer(batch)
	w.Delete(extension.BlockKey(tip.Number, tip.Hash))
	if 0 == tip.Number {
		w.Delete(tipKey)
	} else {
		parent, err := w.Get(extension.BlockKey(tip.Number-1, tip.ParentHash))
		if nil != err {
			batch.Abort()
			return err
		}
		if nil == parent {
			batch.Abort()
			fault.Panicf("rollback block: %d  parent header: %s  not found", tip.Number, tip.ParentHash)
		}
		w.Put(tipKey, parent)
	}

	if err := batch.Commit(); nil != err {
		p.log.Errorf("commit rollback: %d  error: %s", tip.Number, err)
		return err
	}

	p.log.Warnf("rolled back block: %d  hash: %s", tip.Number, tip.Hash)
	p.notify(RolledBack, tip.Number, tip.Hash)
	return nil
}

// Prune - drop rollback records below tip - keep depth
func (p *Processor) Prune() error {
	p.Lock()
	defer p.Unlock()

	tip, err := p.Tip()
	if nil != err || nil == tip {
		return err
	}

	batch, err := p.store.Begin()
	if nil != err {
		return err
	}
	for _, ext := range p.extensions {
		if err := ext.Prune(ext.Namespace().Writer(batch), tip.Number, tip.Hash, p.keepDepth); nil != err {
			batch.Abort()
			return fmt.Errorf("%s: %w", ext.Name(), err)
		}
	}

	// the oldest block that can still be rolled back needs its parent
	n, err := extension.PruneBlocks(Namespace.Writer(batch), tip.Number, p.keepDepth+1)
	if nil != err {
		batch.Abort()
		return err
	}
	if err := batch.Commit(); nil != err {
		return err
	}

	p.log.Debugf("pruned at tip: %d  headers: %d", tip.Number, n)
	return nil
}

func (p *Processor) notify(action string, number uint64, hash blockdigest.Digest) {
	if nil == p.events {
		return
	}
	event := Event{
		Action: action,
		Number: number,
		Hash:   hash,
	}
	if !p.events.Send(Name, event) {
		p.log.Warnf("event queue full, dropped: %s %d", action, number)
	}
}
