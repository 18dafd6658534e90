// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

func TestNamespaceViews(t *testing.T) {
	s := newStore(t)
	defer s.Close()

	a := storage.NewNamespace('A', "alpha")
	z := storage.NewNamespace('Z', "zulu")

	b, err := s.Begin()
	assert.Nil(t, err, "begin error")

	wa := a.Writer(b)
	wz := z.Writer(b)
	wa.Put([]byte("k1"), []byte("a1"))
	wa.Put([]byte("k2"), []byte("a2"))
	wz.Put([]byte("k1"), []byte("z1"))

	value, _ := wa.Get([]byte("k1"))
	assert.Equal(t, []byte("a1"), value, "alpha pending value")
	value, _ = wz.Get([]byte("k1"))
	assert.Equal(t, []byte("z1"), value, "zulu pending value")

	assert.Nil(t, b.Commit(), "commit error")

	value, _ = s.Get([]byte("Ak2"))
	assert.Equal(t, []byte("a2"), value, "raw key")

	ra := a.Reader(s)
	assert.Equal(t, []string{"k1", "k2"}, keys(t, ra.Iterator([]byte("k"), nil, storage.Forward)), "prefix stripped")
	assert.Equal(t, []string{"k1"}, keys(t, ra.Iterator([]byte("k"), []byte("k1"), storage.Reverse)), "reverse from start")
	assert.Equal(t, []string{"k1"}, keys(t, z.Reader(s).Iterator(nil, nil, storage.Forward)), "whole namespace")
}

func TestValidateNamespaces(t *testing.T) {
	err := storage.ValidateNamespaces(
		storage.NewNamespace('N', "native"),
		storage.NewNamespace('U', "token"),
	)
	assert.Nil(t, err, "distinct namespaces rejected")

	err = storage.ValidateNamespaces(
		storage.NewNamespace('N', "native"),
		storage.NewNamespace('N', "other"),
	)
	assert.True(t, errors.Is(err, fault.ErrDuplicateNamespace), "duplicate accepted: %v", err)

	err = storage.ValidateNamespaces(storage.NewNamespace(0, "version"))
	assert.True(t, errors.Is(err, fault.ErrDuplicateNamespace), "reserved id accepted: %v", err)
}
