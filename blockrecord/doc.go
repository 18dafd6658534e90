// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockrecord - the chain data model consumed by the indexer
//
// A block is a header and a list of transactions; transaction 0 is
// the cellbase whose inputs are never resolved.  A cell is an output
// of a transaction together with its data payload, and is named by
// its out-point (transaction hash ++ output index).
//
// Binary forms:
//
//	script        - molecule table: code hash ++ hash type ++ args
//	out-point     - tx hash (32 bytes) ++ index (big endian uint32)
//	detailed cell - block number ++ block hash ++ tx index ++ out-point ++
//	                capacity ++ lock ++ optional type ++ data
//	                (integers big endian, variable fields uint32 length prefixed)
//
// Blocks are read from JSON with hex encoded byte fields.
package blockrecord
