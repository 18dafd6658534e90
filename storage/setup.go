// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/logger"
)

// Reader - read access to committed or pending data
type Reader interface {
	// nil, nil if the key is absent
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// keys having prefix, beginning at start (nil for the first or
	// last key) and proceeding in direction
	Iterator(prefix []byte, start []byte, direction Direction) Iterator
}

// Writer - buffered writes
type Writer interface {
	Reader
	Put(key []byte, value []byte)
	Delete(key []byte)
}

// Batch - a single use atomic write buffer
type Batch interface {
	Writer
	Commit() error
	Abort()
}

// Snapshot - a consistent read only view of committed data
type Snapshot interface {
	Reader
	Release()
}

// Store - the database
type Store interface {
	Reader
	Begin() (Batch, error)
	Snapshot() (Snapshot, error)
	Close() error
}

// ReadOnly and ReadWrite - open modes
const (
	ReadOnly  = true
	ReadWrite = false
)

const currentDBVersion = 0x100

var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

type levelStore struct {
	sync.Mutex

	log      *logger.L
	db       *leveldb.DB
	readOnly bool
	inUse    bool
}

// Open - open or create a database directory
func Open(directory string, readOnly bool) (Store, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(directory, opt)
	if nil != err {
		return nil, wrap(err)
	}
	return newStore(db, readOnly)
}

// NewMemory - a database that is discarded on close
func NewMemory() (Store, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, wrap(err)
	}
	return newStore(db, ReadWrite)
}

func newStore(db *leveldb.DB, readOnly bool) (Store, error) {
	s := &levelStore{
		log:      logger.New("storage"),
		db:       db,
		readOnly: readOnly,
	}

	version, err := getVersion(db)
	if nil != err {
		db.Close()
		return nil, err
	}

	switch {
	case 0 == version && !readOnly:
		if err := putVersion(db, currentDBVersion); nil != err {
			db.Close()
			return nil, err
		}
	case currentDBVersion != version:
		s.log.Criticalf("database version: %d  current version: %d", version, currentDBVersion)
		db.Close()
		return nil, fmt.Errorf("%w: %d expected: %d", fault.ErrDatabaseVersion, version, currentDBVersion)
	}

	s.log.Infof("opened database version: %d  read only: %v", currentDBVersion, readOnly)
	return s, nil
}

func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, wrap(err)
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("%w: version length: %d", fault.ErrDatabaseVersion, len(versionValue))
	}
	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))
	return wrap(db.Put(versionKey, currentVersion, nil))
}

// Get - read a committed value
func (s *levelStore) Get(key []byte) ([]byte, error) {
	return get(s.db, key)
}

// Has - check for a committed key
func (s *levelStore) Has(key []byte) (bool, error) {
	found, err := s.db.Has(key, nil)
	return found, wrap(err)
}

// Iterator - over committed data
func (s *levelStore) Iterator(prefix []byte, start []byte, direction Direction) Iterator {
	return newLevelIterator(s.db, prefix, start, direction)
}

// Begin - start the single write batch
func (s *levelStore) Begin() (Batch, error) {
	s.Lock()
	defer s.Unlock()

	if s.readOnly {
		return nil, fault.ErrReadOnly
	}
	if s.inUse {
		return nil, fault.ErrBatchInUse
	}
	s.inUse = true
	return newBatch(s), nil
}

// called by a batch on commit or abort
func (s *levelStore) release() {
	s.Lock()
	s.inUse = false
	s.Unlock()
}

// Snapshot - consistent view for readers
func (s *levelStore) Snapshot() (Snapshot, error) {
	snap, err := s.db.GetSnapshot()
	if nil != err {
		return nil, wrap(err)
	}
	return &levelSnapshot{snap: snap}, nil
}

// Close - close the database
func (s *levelStore) Close() error {
	s.log.Info("close database")
	s.log.Flush()
	return wrap(s.db.Close())
}

// getter covers both a DB and a snapshot
type getter interface {
	Get(key []byte, ro *ldb_opt.ReadOptions) ([]byte, error)
}

func get(g getter, key []byte) ([]byte, error) {
	value, err := g.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	} else if nil != err {
		return nil, wrap(err)
	}
	return value, nil
}

// errors from the database layer are kept distinct from the fault classes
func wrap(err error) error {
	if nil == err {
		return nil
	}
	return fmt.Errorf("storage: %w", err)
}

type levelSnapshot struct {
	snap *leveldb.Snapshot
}

func (s *levelSnapshot) Get(key []byte) ([]byte, error) {
	return get(s.snap, key)
}

func (s *levelSnapshot) Has(key []byte) (bool, error) {
	found, err := s.snap.Has(key, nil)
	return found, wrap(err)
}

func (s *levelSnapshot) Iterator(prefix []byte, start []byte, direction Direction) Iterator {
	return newLevelIterator(s.snap, prefix, start, direction)
}

func (s *levelSnapshot) Release() {
	s.snap.Release()
}
