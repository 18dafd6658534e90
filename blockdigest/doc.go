// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdigest - 32 byte digests for blocks, transactions and scripts
//
// digests are BLAKE2b-256 and are printed and encoded in JSON as
// big endian hex in the same byte order as stored
package blockdigest
