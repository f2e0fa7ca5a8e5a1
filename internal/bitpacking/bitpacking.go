// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package bitpacking provides functions for reading and writing fixed-width
// unsigned fields at arbitrary bit offsets inside a byte buffer.
//
// Fields are laid out little-endian: bit offset 0 is the least significant bit
// of the first byte. A field may straddle byte boundaries. All accesses are a
// single unaligned 8-byte load (and store, for Set), which is why buffers must
// carry PaddingBytes of slack after the last field; see BufferSize.
package bitpacking

import "encoding/binary"

// MaxWidth is the largest supported field width, in bits.
const MaxWidth = 32

// PaddingBytes is the number of bytes that must follow the byte containing the
// last bit of the last field, so that the 8-byte access of any field stays in
// bounds.
const PaddingBytes = 7

// BufferSize returns the number of bytes required to hold nBits bits of packed
// fields, including padding.
func BufferSize(nBits uint64) int {
	return int((nBits+7)/8) + PaddingBytes
}

// Mask returns a mask with the low width bits set.
func Mask(width uint) uint32 {
	return uint32(uint64(1)<<width - 1)
}

// Get returns the width-bit field starting at bit offset pos.
//
// Width must be at most MaxWidth. A zero-width field reads as 0 and may start
// at the end of the packed bits.
func Get(buf []byte, pos uint64, width uint) uint32 {
	if width == 0 {
		return 0
	}
	w := binary.LittleEndian.Uint64(buf[pos>>3:])
	return uint32(w>>(pos&7)) & Mask(width)
}

// Set stores the low width bits of v in the field starting at bit offset pos.
// Bits outside the field are left untouched.
//
// Width must be at most MaxWidth. Setting a zero-width field is a no-op.
func Set(buf []byte, pos uint64, width uint, v uint32) {
	if width == 0 {
		return
	}
	b := buf[pos>>3:]
	shift := pos & 7
	m := uint64(Mask(width)) << shift
	w := binary.LittleEndian.Uint64(b)
	w = (w &^ m) | (uint64(v)<<shift)&m
	binary.LittleEndian.PutUint64(b, w)
}
