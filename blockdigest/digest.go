// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdigest

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/cellindexd/fault"
)

// Length - number of bytes in the digest
const Length = 32

// ShortLength - number of bytes in a truncated (160 bit) digest
const ShortLength = 20

// Digest - type for a digest
type Digest [Length]byte

// NewDigest - create a digest from a byte slice
func NewDigest(record []byte) Digest {
	return Digest(blake2b.Sum256(record))
}

// NewShortDigest - a 160 bit BLAKE2b digest of a byte slice
func NewShortDigest(record []byte) [ShortLength]byte {
	h, err := blake2b.New(ShortLength, nil)
	fault.PanicIfError("blockdigest.NewShortDigest", err)
	h.Write(record)

	var short [ShortLength]byte
	copy(short[:], h.Sum(nil))
	return short
}

// IsZero - true for the all zero digest
func (digest Digest) IsZero() bool {
	return digest == Digest{}
}

// Compare - byte order comparison
func (digest Digest) Compare(other Digest) int {
	return bytes.Compare(digest[:], other[:])
}

// String - convert a binary digest to hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<BLAKE2b:" + hex.EncodeToString(digest[:]) + ">"
}

// Scan - convert a hex representation to a digest for use by the format package scan routines
func (digest *Digest) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f') || 'x' == c
	})
	if nil != err {
		return err
	}
	return digest.UnmarshalText(token)
}

// MarshalText - convert digest to 0x prefixed hex text
func (digest Digest) MarshalText() ([]byte, error) {
	buffer := make([]byte, 2+hex.EncodedLen(Length))
	buffer[0] = '0'
	buffer[1] = 'x'
	hex.Encode(buffer[2:], digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text, with or without the 0x prefix, into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if len(s) >= 2 && '0' == s[0] && ('x' == s[1] || 'X' == s[1]) {
		s = s[2:]
	}
	if hex.EncodedLen(Length) != len(s) {
		return fault.ErrInvalidDigest
	}
	_, err := hex.Decode(digest[:], s)
	return err
}

// DigestFromBytes - convert and validate a binary byte slice to a digest
func DigestFromBytes(digest *Digest, buffer []byte) error {
	if Length != len(buffer) {
		return fault.ErrInvalidDigest
	}
	copy(digest[:], buffer)
	return nil
}
