// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package specialcells

import (
	"bytes"
	"sort"

	"github.com/bitmark-inc/cellindexd/blockrecord"
	"github.com/bitmark-inc/cellindexd/extension"
	"github.com/bitmark-inc/cellindexd/fault"
)

type cellSet map[blockrecord.PackedOutPoint]*blockrecord.DetailedCell

// Change - cells gained and lost by one subject in one block
type Change struct {
	Added   cellSet
	Removed cellSet
}

func newChange() *Change {
	return &Change{
		Added:   make(cellSet),
		Removed: make(cellSet),
	}
}

// Changes - per subject
type Changes map[string]*Change

func (c Changes) get(subject []byte) *Change {
	change, ok := c[string(subject)]
	if !ok {
		change = newChange()
		c[string(subject)] = change
	}
	return change
}

// Add - a cell created for subject
func (c Changes) Add(subject []byte, cell *blockrecord.DetailedCell) {
	c.get(subject).Added[cell.OutPoint.Pack()] = cell
}

// Remove - a cell of subject was spent
func (c Changes) Remove(subject []byte, cell *blockrecord.DetailedCell) {
	c.get(subject).Removed[cell.OutPoint.Pack()] = cell
}

// Compact - drop cells that were both created and spent, then empty
// changes
func (c Changes) Compact() {
	for subject, change := range c {
		for p := range change.Added {
			if _, ok := change.Removed[p]; ok {
				delete(change.Added, p)
				delete(change.Removed, p)
			}
		}
		if 0 == len(change.Added) && 0 == len(change.Removed) {
			delete(c, subject)
		}
	}
}

// Invert - swap added and removed
func (c Changes) Invert() Changes {
	inverse := make(Changes, len(c))
	for subject, change := range c {
		inverse[subject] = &Change{
			Added:   change.Removed,
			Removed: change.Added,
		}
	}
	return inverse
}

// Subjects - in ascending byte order
func (c Changes) Subjects() []string {
	subjects := make([]string, 0, len(c))
	for subject := range c {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects
}

// Pack - u32 count ++ sorted (u8 length ++ subject ++ added ++ removed)
// where each cell list is u32 count ++ (u32 length ++ packed cell)
func (c Changes) Pack() []byte {
	buffer := extension.AppendUint32(nil, uint32(len(c)))
	for _, subject := range c.Subjects() {
		buffer = append(buffer, byte(len(subject)))
		buffer = append(buffer, subject...)
		buffer = packCells(buffer, c[subject].Added.sorted())
		buffer = packCells(buffer, c[subject].Removed.sorted())
	}
	return buffer
}

// UnpackChanges - reverse of Pack
func UnpackChanges(buffer []byte) (Changes, error) {
	d := extension.NewDecoder(buffer)
	n := d.Uint32()

	c := make(Changes)
	for i := uint32(0); i < n && nil == d.Err(); i += 1 {
		subject := d.Fixed(int(d.Uint8()))
		if nil != d.Err() {
			break
		}
		if _, ok := c[string(subject)]; ok {
			return nil, fault.ErrInvalidRecord
		}
		change := newChange()
		added, err := unpackCells(d)
		if nil != err {
			return nil, err
		}
		removed, err := unpackCells(d)
		if nil != err {
			return nil, err
		}
		for _, cell := range added {
			change.Added[cell.OutPoint.Pack()] = cell
		}
		for _, cell := range removed {
			change.Removed[cell.OutPoint.Pack()] = cell
		}
		c[string(subject)] = change
	}
	if err := d.Finish(); nil != err {
		return nil, err
	}
	return c, nil
}

// ordered by packed out-point
func (s cellSet) sorted() []*blockrecord.DetailedCell {
	cells := make([]*blockrecord.DetailedCell, 0, len(s))
	for _, cell := range s {
		cells = append(cells, cell)
	}
	sortCells(cells)
	return cells
}

func sortCells(cells []*blockrecord.DetailedCell) {
	sort.Slice(cells, func(i, j int) bool {
		a := cells[i].OutPoint.Pack()
		b := cells[j].OutPoint.Pack()
		return bytes.Compare(a[:], b[:]) < 0
	})
}

func packCells(buffer []byte, cells []*blockrecord.DetailedCell) []byte {
	buffer = extension.AppendUint32(buffer, uint32(len(cells)))
	for _, cell := range cells {
		packed := cell.Pack()
		buffer = extension.AppendUint32(buffer, uint32(len(packed)))
		buffer = append(buffer, packed...)
	}
	return buffer
}

func unpackCells(d *extension.Decoder) ([]*blockrecord.DetailedCell, error) {
	n := d.Uint32()
	cells := make([]*blockrecord.DetailedCell, 0)
	for i := uint32(0); i < n && nil == d.Err(); i += 1 {
		packed := d.Fixed(int(d.Uint32()))
		if nil != d.Err() {
			break
		}
		cell, rest, err := blockrecord.UnpackDetailedCell(packed)
		if nil != err {
			return nil, err
		}
		if 0 != len(rest) {
			return nil, fault.ErrInvalidRecord
		}
		cells = append(cells, cell)
	}
	return cells, d.Err()
}
