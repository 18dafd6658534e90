// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"

	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
)

// Script - a script identity as written in the configuration file
type Script struct {
	CodeHash string `gluamapper:"code_hash" json:"code_hash"`
	HashType string `gluamapper:"hash_type" json:"hash_type"`
}

// ExtensionConfig - convert the configured scripts
func ExtensionConfig(scripts map[string]Script, maturityEpochs uint64) (*extension.Config, error) {
	patterns := make(map[string]extension.ScriptPattern)
	for name, script := range scripts {
		pattern := extension.ScriptPattern{}
		if err := pattern.CodeHash.UnmarshalText([]byte(script.CodeHash)); nil != err {
			return nil, fmt.Errorf("script: %s  code hash: %q  error: %w", name, script.CodeHash, err)
		}
		hashType := script.HashType
		if "" == hashType {
			hashType = blockrecord.HashTypeType.String()
		}
		if err := pattern.HashType.UnmarshalText([]byte(hashType)); nil != err {
			return nil, fmt.Errorf("script: %s  hash type: %q  error: %w", name, script.HashType, err)
		}
		patterns[name] = pattern
	}
	return extension.NewConfig(patterns, maturityEpochs)
}
