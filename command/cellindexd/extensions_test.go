// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/cellindexd/configuration"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/storage"
)

func names(extensions []extension.Extension) []string {
	n := make([]string, 0, len(extensions))
	for _, e := range extensions {
		n = append(n, e.Name())
	}
	return n
}

func TestMakeExtensions(t *testing.T) {
	store, err := storage.NewMemory()
	assert.Nil(t, err, "store error")
	defer store.Close()

	config, err := configuration.ExtensionConfig(nil, 0)
	assert.Nil(t, err, "config error")

	all, err := makeExtensions(store, config, nil)
	assert.Nil(t, err, "all extensions error")
	assert.Equal(t, []string{"cells", "balance", "token", "specialcells", "maturity", "rce", "scripthash"}, names(all), "all extensions")

	// cell store is always first, the rest keep registration order
	some, err := makeExtensions(store, config, []string{"scripthash", "token"})
	assert.Nil(t, err, "some extensions error")
	assert.Equal(t, []string{"cells", "token", "scripthash"}, names(some), "selected extensions")

	cells, err := makeExtensions(store, config, []string{"cells"})
	assert.Nil(t, err, "cells only error")
	assert.Equal(t, []string{"cells"}, names(cells), "cells only")

	_, err = makeExtensions(store, config, []string{"balance", "ledger"})
	assert.NotNil(t, err, "unknown extension accepted")

	_, err = makeExtensions(store, config, []string{"maturity", "maturity"})
	assert.NotNil(t, err, "duplicate extension accepted")
}
