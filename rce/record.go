// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rce

import (
	"github.com/bitmark-inc/cellindexd/extension"
)

// rollback data for one block, two lists of
//
//	BE u64 count ++ count * (BE u64 length ++ key)
type record struct {
	inserted [][]byte
	deleted  [][]byte
}

func packKeys(buffer []byte, keys [][]byte) []byte {
	buffer = extension.AppendUint64(buffer, uint64(len(keys)))
	for _, key := range keys {
		buffer = extension.AppendUint64(buffer, uint64(len(key)))
		buffer = append(buffer, key...)
	}
	return buffer
}

func unpackKeys(d *extension.Decoder) [][]byte {
	keys := make([][]byte, 0)
	n := d.Uint64()
	for i := uint64(0); i < n && nil == d.Err(); i += 1 {
		length := d.Uint64()
		if length > uint64(d.Remaining()) {
			d.Fixed(d.Remaining() + 1)
			break
		}
		key := d.Fixed(int(length))
		if nil != d.Err() {
			break
		}
		keys = append(keys, append([]byte{}, key...))
	}
	return keys
}

func (r *record) pack() []byte {
	return packKeys(packKeys(nil, r.inserted), r.deleted)
}

func unpackRecord(buffer []byte) (*record, error) {
	d := extension.NewDecoder(buffer)
	r := &record{
		inserted: unpackKeys(d),
		deleted:  unpackKeys(d),
	}
	if err := d.Finish(); nil != err {
		return nil, err
	}
	return r, nil
}
