// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package processor

import (
	"context"
	"errors"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/fault"
)

//go:generate mockgen -source=syncer.go -destination=mocks/blocksource.go -package=mocks

// BlockSource - supplies blocks by height
type BlockSource interface {
	// fault.ErrBlockNotFound if the height is not yet available
	Block(number uint64) (*blockrecord.Block, error)
	// signalled when new blocks may be available
	Wake() <-chan struct{}
}

// time to wait when there is nothing to do and no wake up
const idleDelay = 10 * time.Second

// Syncer - background process feeding the processor from a source
type Syncer struct {
	log           *logger.L
	processor     *Processor
	source        BlockSource
	limiter       *rate.Limiter
	pruneInterval uint64
	appended      uint64
}

// NewSyncer - fetch at most pollRate blocks per second with the given
// burst, prune after every pruneInterval appended blocks (0 never)
func NewSyncer(processor *Processor, source BlockSource, pollRate float64, burst int, pruneInterval uint64) *Syncer {
	return &Syncer{
		log:           logger.New("syncer"),
		processor:     processor,
		source:        source,
		limiter:       rate.NewLimiter(rate.Limit(pollRate), burst),
		pruneInterval: pruneInterval,
	}
}

// Step - one unit of work: append the next block, roll back one block
// on a fork, or nothing when the next block is not available
func (s *Syncer) Step() (bool, error) {
	tip, err := s.processor.Tip()
	if nil != err {
		return false, err
	}

	next := uint64(0)
	if nil != tip {
		next = tip.Number + 1
	}

	block, err := s.source.Block(next)
	if errors.Is(err, fault.ErrBlockNotFound) {
		return false, nil
	}
	if nil != err {
		return false, err
	}

	if nil != tip && block.Header.ParentHash != tip.Hash {
		s.log.Warnf("fork at: %d  parent: %s  tip: %s", next, block.Header.ParentHash, tip.Hash)
		return true, s.processor.Rollback()
	}

	if err := s.processor.Append(block); nil != err {
		return false, err
	}

	s.appended += 1
	if 0 != s.pruneInterval && 0 == s.appended%s.pruneInterval {
		if err := s.processor.Prune(); nil != err {
			return true, err
		}
	}
	return true, nil
}

// Run - implements background.Process
func (s *Syncer) Run(args interface{}, shutdown <-chan struct{}) {
	log := s.log
	log.Info("starting…")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-shutdown
		cancel()
	}()

loop:
	for {
		if err := s.limiter.Wait(ctx); nil != err {
			break loop
		}

		progressed, err := s.Step()
		if nil != err {
			log.Errorf("sync error: %s", err)
		}
		if progressed && nil == err {
			continue loop
		}

		select {
		case <-shutdown:
			break loop
		case <-s.source.Wake():
		case <-time.After(idleDelay):
		}
	}

	cancel()
	log.Info("shutting down…")
	log.Flush()
}
