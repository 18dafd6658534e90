// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package balance - running balances of native capacity and tokens
//
// keys:
//
//	0x00 ++ subject               - big endian unsigned balance
//	0x10 ++ BE height ++ hash     - packed Deltas applied by the block
//
// native subject: lock script hash, 8 byte balance
// token subject:  type script hash ++ lock script hash, 16 byte balance
package balance

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/holiman/uint256"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// names of the two ledgers
const (
	NativeName = "balance"
	TokenName  = "token"
)

// namespaces of the two ledgers
var (
	NativeNamespace = storage.NewNamespace('N', NativeName)
	TokenNamespace  = storage.NewNamespace('U', TokenName)
)

// bytes in a token amount at the front of cell data
const tokenAmountLength = 16

// extracts the subject and amount tracked for a cell
type extractor func(cell *blockrecord.DetailedCell) ([]byte, *uint256.Int, bool)

// Ledger - one balance index
type Ledger struct {
	log       *logger.L
	name      string
	namespace storage.Namespace
	cells     extension.CellSource
	extract   extractor
	width     int
	max       *uint256.Int
}

// NewNative - capacity per lock script, all locks are tracked if no
// native lock is configured
func NewNative(config *extension.Config, cells extension.CellSource) *Ledger {
	pattern, restricted := config.Pattern(extension.NativeLock)
	extract := func(cell *blockrecord.DetailedCell) ([]byte, *uint256.Int, bool) {
		if restricted && !pattern.Matches(&cell.Output.Lock) {
			return nil, nil, false
		}
		hash := cell.Output.Lock.Hash()
		return hash[:], uint256.NewInt(cell.Output.Capacity), true
	}
	return newLedger(NativeName, NativeNamespace, cells, extract, 8)
}

// NewToken - token amount per type script and lock script
func NewToken(config *extension.Config, cells extension.CellSource) *Ledger {
	extract := func(cell *blockrecord.DetailedCell) ([]byte, *uint256.Int, bool) {
		if !config.Matches(extension.TokenType, cell.Output.Type) {
			return nil, nil, false
		}
		if len(cell.Data) < tokenAmountLength {
			return nil, nil, false
		}
		return TokenSubject(cell.Output.Type.Hash(), cell.Output.Lock.Hash()), TokenAmount(cell.Data), true
	}
	return newLedger(TokenName, TokenNamespace, cells, extract, tokenAmountLength)
}

func newLedger(name string, namespace storage.Namespace, cells extension.CellSource, extract extractor, width int) *Ledger {
	max := new(uint256.Int).Lsh(uint256.NewInt(1), uint(8*width))
	max.Sub(max, uint256.NewInt(1))
	return &Ledger{
		log:       logger.New(name),
		name:      name,
		namespace: namespace,
		cells:     cells,
		extract:   extract,
		width:     width,
		max:       max,
	}
}

// TokenSubject - type script hash ++ lock script hash
func TokenSubject(typeHash blockdigest.Digest, lockHash blockdigest.Digest) []byte {
	subject := make([]byte, 0, 2*blockdigest.Length)
	subject = append(subject, typeHash[:]...)
	return append(subject, lockHash[:]...)
}

// TokenAmount - little endian u128 at the front of the data
func TokenAmount(data []byte) *uint256.Int {
	be := make([]byte, tokenAmountLength)
	for i := 0; i < tokenAmountLength; i += 1 {
		be[tokenAmountLength-1-i] = data[i]
	}
	return new(uint256.Int).SetBytes(be)
}

// Name - implements extension.Extension
func (l *Ledger) Name() string {
	return l.name
}

// Namespace - implements extension.Extension
func (l *Ledger) Namespace() storage.Namespace {
	return l.namespace
}

// Deltas - the net change a block makes to each tracked subject
func (l *Ledger) Deltas(block *blockrecord.Block) (Deltas, error) {
	deltas := make(Deltas)

	resolver := extension.NewResolver(block, l.cells)
	err := resolver.Inputs(func(_ int, cell *blockrecord.DetailedCell) error {
		if subject, amount, ok := l.extract(cell); ok {
			deltas.Sub(subject, amount)
		}
		return nil
	})
	if nil != err {
		return nil, err
	}

	err = extension.Outputs(block, func(_ int, cell *blockrecord.DetailedCell) error {
		if subject, amount, ok := l.extract(cell); ok {
			deltas.Add(subject, amount)
		}
		return nil
	})
	if nil != err {
		return nil, err
	}

	deltas.Compact()
	return deltas, nil
}

// Append - merge the block's deltas and keep them for rollback
func (l *Ledger) Append(w storage.Writer, block *blockrecord.Block) error {
	deltas, err := l.Deltas(block)
	if nil != err {
		return err
	}
	if err := l.merge(w, deltas); nil != err {
		l.log.Errorf("block: %d  hash: %s  error: %s", block.Header.Number, block.Header.Hash, err)
		return err
	}
	w.Put(extension.BlockKey(block.Header.Number, block.Header.Hash), deltas.Pack())

	l.log.Debugf("block: %d  subjects: %d", block.Header.Number, len(deltas))
	return nil
}

// Rollback - merge the negated deltas of the tip
func (l *Ledger) Rollback(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest) error {
	record, err := extension.RollbackRecord(w, tipNumber, tipHash)
	if nil != err {
		return err
	}
	deltas, err := UnpackDeltas(record)
	if nil != err {
		return err
	}
	if err := l.merge(w, deltas.Negate()); nil != err {
		return err
	}
	w.Delete(extension.BlockKey(tipNumber, tipHash))

	l.log.Debugf("rollback block: %d  subjects: %d", tipNumber, len(deltas))
	return nil
}

// Prune - drop old delta records
func (l *Ledger) Prune(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest, keepDepth uint64) error {
	n, err := extension.PruneBlocks(w, tipNumber, keepDepth)
	if nil != err {
		return err
	}
	l.log.Debugf("pruned: %d records below: %d", n, tipNumber)
	return nil
}

// all results are checked before anything is written so a failure
// leaves the batch untouched
func (l *Ledger) merge(w storage.Writer, deltas Deltas) error {
	subjects := deltas.Subjects()
	results := make([]*uint256.Int, len(subjects))

	for i, subject := range subjects {
		current, err := Balance(w, []byte(subject))
		if nil != err {
			return err
		}
		result := new(uint256.Int).Add(current, deltas[subject])
		if result.Sign() < 0 {
			return fmt.Errorf("%w: subject: %x  balance: %s", fault.ErrNegativeBalance, subject, signedString(result))
		}
		if result.Gt(l.max) {
			return fmt.Errorf("%w: subject: %x  balance: %s", fault.ErrBalanceOverflow, subject, result.Dec())
		}
		results[i] = result
	}

	for i, subject := range subjects {
		key := extension.AddressKey([]byte(subject))
		if results[i].IsZero() {
			w.Delete(key)
			continue
		}
		w.Put(key, l.encode(results[i]))
		l.log.Tracef("subject: %x  balance: %s", subject, results[i].Dec())
	}
	return nil
}

// fixed width big endian
func (l *Ledger) encode(n *uint256.Int) []byte {
	b := n.Bytes32()
	return append([]byte{}, b[32-l.width:]...)
}
