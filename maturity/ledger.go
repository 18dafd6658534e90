// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package maturity - vesting of cellbase rewards
//
// every immature reward has one due key, ordered by the height of the
// block that created it; block heights increase with epochs so the due
// keys form a single queue ordered by epoch and only the entries that
// actually mature are visited by a block
//
// keys:
//
//	0x00 ++ lock hash             - packed Account
//	0x30 ++ BE height ++ lock hash - packed Entry
//	0x10 ++ BE height ++ hash     - pushed and matured entries
package maturity

import (
	"fmt"
	"math"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// Name - of this index
const Name = "maturity"

// Namespace - storage prefix of this index
var Namespace = storage.NewNamespace('M', Name)

// Ledger - the maturity index
type Ledger struct {
	log    *logger.L
	epochs uint64
}

// New - rewards mature config.MaturityEpochs whole epochs after the
// block that created them
func New(config *extension.Config) *Ledger {
	return &Ledger{
		log:    logger.New(Name),
		epochs: config.MaturityEpochs,
	}
}

// Name - implements extension.Extension
func (l *Ledger) Name() string {
	return Name
}

// Namespace - implements extension.Extension
func (l *Ledger) Namespace() storage.Namespace {
	return Namespace
}

// Append - mature due entries then queue the block's reward
func (l *Ledger) Append(w storage.Writer, block *blockrecord.Block) error {
	header := &block.Header
	rec := &record{
		matured: make([]due, 0),
	}

	if !block.IsGenesis() {
		matured, err := l.mature(w, header.Epoch)
		if nil != err {
			l.log.Errorf("block: %d  hash: %s  error: %s", header.Number, header.Hash, err)
			return err
		}
		rec.matured = matured

		if cellbase := block.Cellbase(); nil != cellbase {
			pushed := &due{
				height:  header.Number,
				subject: cellbase.Output.Lock.Hash(),
				entry: Entry{
					Epoch:  header.Epoch,
					Amount: cellbase.Output.Capacity,
				},
			}
			if err := push(w, pushed); nil != err {
				return err
			}
			rec.pushed = pushed
		}
	}

	w.Put(extension.BlockKey(header.Number, header.Hash), rec.pack())
	l.log.Debugf("block: %d  epoch: %s  matured: %d", header.Number, header.Epoch, len(rec.matured))
	return nil
}

// every due entry older than the threshold moves to its account's
// matured total
func (l *Ledger) mature(w storage.Writer, epoch blockrecord.Epoch) ([]due, error) {
	matured := make([]due, 0)

	threshold, ok := epoch.Sub(l.epochs)
	if !ok {
		return matured, nil
	}

	it := w.Iterator(extension.KindDue.Prefix(), nil, storage.Forward)
	for it.Next() {
		entry, err := EntryFromBytes(it.Value())
		if nil != err {
			it.Release()
			return nil, err
		}
		if !entry.Epoch.Less(threshold) {
			break
		}
		key := it.Key()
		d := extension.NewDecoder(key[1:])
		m := due{
			height: d.Uint64(),
			entry:  entry,
		}
		copy(m.subject[:], d.Fixed(blockdigest.Length))
		if err := d.Finish(); nil != err {
			it.Release()
			return nil, err
		}
		matured = append(matured, m)
	}
	it.Release()
	if err := it.Error(); nil != err {
		return nil, err
	}

	for _, m := range matured {
		account, err := GetAccount(w, m.subject[:])
		if nil != err {
			return nil, err
		}
		if 0 == len(account.Queue) || !account.Queue[0].Equal(m.entry) {
			return nil, fmt.Errorf("%w: subject: %x  height: %d", fault.ErrMaturityQueueMismatch, m.subject, m.height)
		}
		if account.Matured > math.MaxUint64-m.entry.Amount {
			return nil, fmt.Errorf("%w: subject: %x", fault.ErrBalanceOverflow, m.subject)
		}
		account.Queue = account.Queue[1:]
		account.Matured += m.entry.Amount
		putAccount(w, m.subject[:], account)
		w.Delete(m.key())
		l.log.Tracef("matured subject: %x  amount: %d", m.subject, m.entry.Amount)
	}
	return matured, nil
}

func push(w storage.Writer, d *due) error {
	account, err := GetAccount(w, d.subject[:])
	if nil != err {
		return err
	}
	account.Queue = append(account.Queue, d.entry)
	putAccount(w, d.subject[:], account)
	w.Put(d.key(), d.entry.Pack())
	return nil
}

// Rollback - remove the pushed reward then un-mature in reverse
func (l *Ledger) Rollback(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest) error {
	packed, err := extension.RollbackRecord(w, tipNumber, tipHash)
	if nil != err {
		return err
	}
	rec, err := unpackRecord(packed, tipNumber)
	if nil != err {
		return err
	}

	if p := rec.pushed; nil != p {
		account, err := GetAccount(w, p.subject[:])
		if nil != err {
			return err
		}
		position := -1
		for i := len(account.Queue) - 1; i >= 0; i -= 1 {
			if account.Queue[i].Equal(p.entry) {
				position = i
				break
			}
		}
		if position < 0 {
			return fmt.Errorf("%w: subject: %x  pushed entry missing", fault.ErrMaturityQueueMismatch, p.subject)
		}
		account.Queue = append(account.Queue[:position], account.Queue[position+1:]...)
		putAccount(w, p.subject[:], account)
		w.Delete(p.key())
	}

	for i := len(rec.matured) - 1; i >= 0; i -= 1 {
		m := rec.matured[i]
		account, err := GetAccount(w, m.subject[:])
		if nil != err {
			return err
		}
		if account.Matured < m.entry.Amount {
			return fmt.Errorf("%w: subject: %x  matured: %d  amount: %d", fault.ErrMaturityQueueMismatch, m.subject, account.Matured, m.entry.Amount)
		}
		account.Matured -= m.entry.Amount
		account.Queue = append([]Entry{m.entry}, account.Queue...)
		putAccount(w, m.subject[:], account)
		w.Put(m.key(), m.entry.Pack())
	}

	w.Delete(extension.BlockKey(tipNumber, tipHash))
	l.log.Debugf("rollback block: %d  restored: %d", tipNumber, len(rec.matured))
	return nil
}

// Prune - drop old records, due keys are running state and stay
func (l *Ledger) Prune(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest, keepDepth uint64) error {
	n, err := extension.PruneBlocks(w, tipNumber, keepDepth)
	if nil != err {
		return err
	}
	l.log.Debugf("pruned: %d records below: %d", n, tipNumber)
	return nil
}
