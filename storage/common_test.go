// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/storage"
)

const (
	testingDirName   = "testing"
	databaseFileName = "testing/test.leveldb"
)

func TestMain(m *testing.M) {
	if err := setup(); nil != err {
		os.Exit(1)
	}
	result := m.Run()
	teardown()
	os.Exit(result)
}

// remove all files created by test
func removeFiles() {
	os.RemoveAll(testingDirName)
}

// configure for testing
func setup() error {
	removeFiles()
	os.Mkdir(testingDirName, 0o700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	return logger.Initialise(logging)
}

// post test cleanup
func teardown() {
	logger.Finalise()
	removeFiles()
}

func newStore(t *testing.T) storage.Store {
	s, err := storage.NewMemory()
	if nil != err {
		t.Fatalf("memory store error: %s", err)
	}
	return s
}

// put string pairs and commit
func fill(t *testing.T, s storage.Store, pairs ...string) {
	b, err := s.Begin()
	if nil != err {
		t.Fatalf("begin error: %s", err)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Put([]byte(pairs[i]), []byte(pairs[i+1]))
	}
	if err := b.Commit(); nil != err {
		t.Fatalf("commit error: %s", err)
	}
}

// keys of an iterator as strings
func keys(t *testing.T, it storage.Iterator) []string {
	elements, err := storage.Collect(it, 0)
	if nil != err {
		t.Fatalf("iterate error: %s", err)
	}
	result := make([]string, 0, len(elements))
	for _, e := range elements {
		result = append(result, string(e.Key))
	}
	return result
}
