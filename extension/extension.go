// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package extension

import (
	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/storage"
)

//go:generate mockgen -source=extension.go -destination=mocks/extension.go -package=mocks

// Extension - a derived index driven by the processor
type Extension interface {
	Name() string
	Namespace() storage.Namespace
	Append(w storage.Writer, block *blockrecord.Block) error
	Rollback(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest) error
	Prune(w storage.Writer, tipNumber uint64, tipHash blockdigest.Digest, keepDepth uint64) error
}

// CellSource - committed live cells from earlier blocks
type CellSource interface {
	Cell(outPoint blockrecord.OutPoint) (*blockrecord.DetailedCell, error)
}
