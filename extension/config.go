// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package extension

import (
	"fmt"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/fault"
)

// logical script names
const (
	NativeLock  = "native_lock"
	TokenType   = "token_type"
	DepositLock = "deposit_lock"
	ClaimLock   = "claim_lock"
	RCEType     = "rce_type"
)

// DefaultMaturityEpochs - epochs before a cellbase reward matures
const DefaultMaturityEpochs = 4

// ScriptPattern - identifies a script regardless of its args
type ScriptPattern struct {
	CodeHash blockdigest.Digest
	HashType blockrecord.HashType
}

// Matches - true if the script has this code hash and hash type
func (p ScriptPattern) Matches(script *blockrecord.Script) bool {
	if nil == script {
		return false
	}
	return p.CodeHash == script.CodeHash && p.HashType == script.HashType
}

// String - for log messages
func (p ScriptPattern) String() string {
	return fmt.Sprintf("%s/%s", p.CodeHash, p.HashType)
}

// Config - script identities and constants shared by every index
//
// built once at start up and passed to each constructor
type Config struct {
	scripts        map[string]ScriptPattern
	MaturityEpochs uint64
}

// NewConfig - validate script names and fill in defaults
func NewConfig(scripts map[string]ScriptPattern, maturityEpochs uint64) (*Config, error) {
	c := &Config{
		scripts:        make(map[string]ScriptPattern),
		MaturityEpochs: maturityEpochs,
	}
	for name, pattern := range scripts {
		switch name {
		case NativeLock, TokenType, DepositLock, ClaimLock, RCEType:
			c.scripts[name] = pattern
		default:
			return nil, fmt.Errorf("%w: unknown script name: %q", fault.ErrInvalidScriptPattern, name)
		}
	}
	if 0 == c.MaturityEpochs {
		c.MaturityEpochs = DefaultMaturityEpochs
	}
	return c, nil
}

// Pattern - the configured pattern for a name
func (c *Config) Pattern(name string) (ScriptPattern, bool) {
	p, ok := c.scripts[name]
	return p, ok
}

// Matches - false when the name is not configured
func (c *Config) Matches(name string, script *blockrecord.Script) bool {
	p, ok := c.scripts[name]
	return ok && p.Matches(script)
}
