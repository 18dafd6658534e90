// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package extension

import (
	"fmt"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/storage"
)

// RollbackRecord - the record stored by Append for a block
func RollbackRecord(r storage.Reader, number uint64, hash blockdigest.Digest) ([]byte, error) {
	record, err := r.Get(BlockKey(number, hash))
	if nil != err {
		return nil, err
	}
	if nil == record {
		return nil, fmt.Errorf("%w: block: %d  hash: %s", fault.ErrRollbackRecordNotFound, number, hash)
	}
	return record, nil
}

// PruneBlocks - delete block keys with height below tip - keep depth
//
// keys sort by height so the scan stops at the first survivor
func PruneBlocks(w storage.Writer, tipNumber uint64, keepDepth uint64) (int, error) {
	if tipNumber < keepDepth {
		return 0, nil
	}
	limit := tipNumber - keepDepth

	it := w.Iterator(KindBlock.Prefix(), nil, storage.Forward)
	defer it.Release()

	deletions := make([][]byte, 0)
	for it.Next() {
		key := it.Key()
		number, _, err := ParseBlockKey(key)
		if nil != err {
			return 0, err
		}
		if number >= limit {
			break
		}
		deletions = append(deletions, key)
	}
	if err := it.Error(); nil != err {
		return 0, err
	}

	for _, key := range deletions {
		w.Delete(key)
	}
	return len(deletions), nil
}
