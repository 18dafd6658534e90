// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blocksource - blocks delivered as JSON files named
// <height>.json in a watched directory
package blocksource

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/fault"
)

const (
	loggerPrefix = "blocksource"
	fileSuffix   = ".json"
)

// Directory - implements processor.BlockSource
type Directory struct {
	log     *logger.L
	path    string
	watcher *fsnotify.Watcher
	wake    chan struct{}
}

// New - the directory must already exist
func New(directory string) (*Directory, error) {
	path, err := filepath.Abs(filepath.Clean(directory))
	if nil != err {
		return nil, err
	}

	info, err := os.Stat(path)
	if nil != err {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("block directory: %q is not a directory", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}
	if err := watcher.Add(path); nil != err {
		watcher.Close()
		return nil, err
	}

	return &Directory{
		log:     logger.New(loggerPrefix),
		path:    path,
		watcher: watcher,
		wake:    make(chan struct{}, 1),
	}, nil
}

// FileName - the file holding a block
func (d *Directory) FileName(number uint64) string {
	return filepath.Join(d.path, strconv.FormatUint(number, 10)+fileSuffix)
}

// Block - read and decode one block
func (d *Directory) Block(number uint64) (*blockrecord.Block, error) {
	buffer, err := ioutil.ReadFile(d.FileName(number))
	if os.IsNotExist(err) {
		return nil, fault.ErrBlockNotFound
	}
	if nil != err {
		return nil, err
	}

	block, err := blockrecord.BlockFromJSON(buffer)
	if nil != err {
		return nil, fmt.Errorf("block file: %d  error: %w", number, err)
	}
	if number != block.Header.Number {
		return nil, fmt.Errorf("%w: file: %d  contains block: %d", fault.ErrInvalidRecord, number, block.Header.Number)
	}
	return block, nil
}

// Wake - signalled when a block file is created or written
func (d *Directory) Wake() <-chan struct{} {
	return d.wake
}

// Run - implements background.Process
func (d *Directory) Run(args interface{}, shutdown <-chan struct{}) {
	log := d.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event, ok := <-d.watcher.Events:
			if !ok {
				break loop
			}
			if !isBlockFile(event.Name) || !isChange(event) {
				continue loop
			}
			log.Debugf("file event: %v", event)
			d.signal()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				break loop
			}
			log.Errorf("watcher error: %s", err)
		}
	}

	d.watcher.Close()
	log.Info("shutting down…")
	log.Flush()
}

func (d *Directory) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
		// a wake up is already pending
	}
}

func isBlockFile(name string) bool {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, fileSuffix) {
		return false
	}
	_, err := strconv.ParseUint(strings.TrimSuffix(base, fileSuffix), 10, 64)
	return nil == err
}

func isChange(event fsnotify.Event) bool {
	return event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}
