// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

// WitnessArgs - the standard witness layout, each field is optional
// and nil when absent
type WitnessArgs struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}

// Pack - molecule table of three BytesOpt fields
func (w *WitnessArgs) Pack() []byte {
	return PackTable(packOptional(w.Lock), packOptional(w.InputType), packOptional(w.OutputType))
}

// UnpackWitnessArgs - decode a raw witness
func UnpackWitnessArgs(data []byte) (*WitnessArgs, error) {
	fields, err := UnpackTable(data, 3)
	if nil != err {
		return nil, err
	}

	values := make([][]byte, 3)
	for i, f := range fields {
		if 0 == len(f) {
			continue
		}
		values[i], err = UnpackBytes(f)
		if nil != err {
			return nil, err
		}
	}
	return &WitnessArgs{
		Lock:       values[0],
		InputType:  values[1],
		OutputType: values[2],
	}, nil
}

func packOptional(b []byte) []byte {
	if nil == b {
		return []byte{}
	}
	return PackBytes(b)
}
