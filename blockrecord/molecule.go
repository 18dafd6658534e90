// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"

	"github.com/bitmark-inc/cellindexd/fault"
)

// molecule encodes all sizes and offsets as little endian uint32
const moleculeWordSize = 4

// PackTable - encode fields as a molecule table
func PackTable(fields ...[]byte) []byte {
	headerSize := moleculeWordSize * (1 + len(fields))
	total := headerSize
	for _, f := range fields {
		total += len(f)
	}

	buffer := make([]byte, headerSize, total)
	binary.LittleEndian.PutUint32(buffer, uint32(total))
	offset := headerSize
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buffer[moleculeWordSize*(i+1):], uint32(offset))
		offset += len(f)
	}
	for _, f := range fields {
		buffer = append(buffer, f...)
	}
	return buffer
}

// UnpackTable - split a molecule table into exactly fieldCount fields
func UnpackTable(data []byte, fieldCount int) ([][]byte, error) {
	if len(data) < moleculeWordSize {
		return nil, fault.ErrInvalidMolecule
	}
	total := int(binary.LittleEndian.Uint32(data))
	if total != len(data) {
		return nil, fault.ErrInvalidMolecule
	}

	headerSize := moleculeWordSize * (1 + fieldCount)
	if 0 == fieldCount {
		if moleculeWordSize != total {
			return nil, fault.ErrInvalidMolecule
		}
		return [][]byte{}, nil
	}
	if total < headerSize {
		return nil, fault.ErrInvalidMolecule
	}
	if headerSize != int(binary.LittleEndian.Uint32(data[moleculeWordSize:])) {
		return nil, fault.ErrInvalidMolecule
	}

	offsets := make([]int, fieldCount+1)
	for i := 0; i < fieldCount; i += 1 {
		offsets[i] = int(binary.LittleEndian.Uint32(data[moleculeWordSize*(i+1):]))
	}
	offsets[fieldCount] = total

	fields := make([][]byte, fieldCount)
	for i := 0; i < fieldCount; i += 1 {
		if offsets[i] > offsets[i+1] || offsets[i] < headerSize {
			return nil, fault.ErrInvalidMolecule
		}
		fields[i] = data[offsets[i]:offsets[i+1]]
	}
	return fields, nil
}

// PackBytes - encode a byte string as a molecule fixvec
func PackBytes(b []byte) []byte {
	return PackFixVec(b, len(b))
}

// PackFixVec - encode count concatenated fixed size items
func PackFixVec(items []byte, count int) []byte {
	buffer := make([]byte, moleculeWordSize, moleculeWordSize+len(items))
	binary.LittleEndian.PutUint32(buffer, uint32(count))
	return append(buffer, items...)
}

// UnpackBytes - decode a molecule fixvec of bytes
func UnpackBytes(data []byte) ([]byte, error) {
	return UnpackFixVec(data, 1)
}

// UnpackFixVec - decode a molecule fixvec returning the concatenated items
func UnpackFixVec(data []byte, itemSize int) ([]byte, error) {
	if len(data) < moleculeWordSize || itemSize <= 0 {
		return nil, fault.ErrInvalidMolecule
	}
	count := int(binary.LittleEndian.Uint32(data))
	if len(data)-moleculeWordSize != count*itemSize {
		return nil, fault.ErrInvalidMolecule
	}
	return data[moleculeWordSize:], nil
}
