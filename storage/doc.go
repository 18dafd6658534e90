// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// A single LevelDB database is split into namespaces, each defined
// by a one byte prefix that is registered by its owner at start up
// and checked to be unique.  Everything below a namespace belongs to
// exactly one index.
//
// All writes for one block go through a single Batch which is
// committed once; reads made through the batch see its own pending
// writes.  Readers that must not block the writer take a Snapshot.
//
// Notes:
//  1. ++           = concatenation of byte data
//  2. block number = big endian uint64 (8 bytes)
//  3. hash         = 32 byte BLAKE2b-256 digest
//
// Reserved:
//
//	0x00 ++ "VERSION"      - database version
//	                         data: big endian uint32
package storage
