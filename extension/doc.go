// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package extension - the contract shared by every derived index
//
// An extension owns one storage namespace and is driven one block at
// a time by the processor:
//
//	Append   - compute the block's delta, merge it into running state
//	           and store a rollback record under the block key
//	Rollback - invert the stored record and delete it
//	Prune    - delete rollback records below tip - keep depth
//
// All writes go to the processor's single batch through a writer that
// is already scoped to the namespace. Extensions never commit.
//
// keys inside a namespace (byte 0 is the kind):
//
//	0x00 ++ subject               running state for one subject
//	0x10 ++ BE height ++ hash     rollback record for one block
//	0x20 ++ script hash           script
//	0x30 ++ BE height ++ subject  maturity due entry
//	0x40 ++ tx hash               transaction location
//	0x50 ++ packed out-point      live cell
package extension
