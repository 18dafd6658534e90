// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/cellindexd/balance"
	"github.com/bitmark-inc/cellindexd/cellstore"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/maturity"
	"github.com/bitmark-inc/cellindexd/rce"
	"github.com/bitmark-inc/cellindexd/scripthash"
	"github.com/bitmark-inc/cellindexd/specialcells"
	"github.com/bitmark-inc/cellindexd/storage"
)

// registration order of the optional indexes
var extensionNames = []string{
	balance.NativeName,
	balance.TokenName,
	specialcells.Name,
	maturity.Name,
	rce.Name,
	scripthash.Name,
}

// check the configured index names, empty selects every index
func checkExtensionNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
names:
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("extension: %q is duplicated", name)
		}
		seen[name] = struct{}{}
		if cellstore.Name == name {
			continue names
		}
		for _, known := range extensionNames {
			if known == name {
				continue names
			}
		}
		return fmt.Errorf("extension: %q is not known", name)
	}
	return nil
}

// build the enabled indexes
//
// the cell store is always first since it resolves the inputs of
// every other index, the rest follow the fixed registration order
func makeExtensions(store storage.Store, config *extension.Config, names []string) ([]extension.Extension, error) {
	if err := checkExtensionNames(names); nil != err {
		return nil, err
	}

	enabled := make(map[string]bool, len(names))
	for _, name := range names {
		enabled[name] = true
	}

	cells := cellstore.New(store)
	extensions := []extension.Extension{cells}

	for _, name := range extensionNames {
		if 0 != len(names) && !enabled[name] {
			continue
		}

		var e extension.Extension
		switch name {
		case balance.NativeName:
			e = balance.NewNative(config, cells)
		case balance.TokenName:
			e = balance.NewToken(config, cells)
		case specialcells.Name:
			e = specialcells.New(config, cells)
		case maturity.Name:
			e = maturity.New(config)
		case rce.Name:
			e = rce.New(config)
		case scripthash.Name:
			e = scripthash.New()
		}
		extensions = append(extensions, e)
	}
	return extensions, nil
}
