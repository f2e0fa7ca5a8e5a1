// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

// A sorted sequence of four 4-bit values is a multiset of size 4 drawn from 16
// values. There are C(16+4-1, 4) = 3876 of those, so the sequence fits in a
// 12-bit code instead of 16 bits.
//
// Codes are assigned in lexicographic order of the sorted sequences, so the
// all-zero sequence (an empty bucket) has code 0 and a zeroed buffer decodes
// to empty buckets.
const (
	dirBitsPerTag = 4
	dirMask       = 1<<dirBitsPerTag - 1
	codeBits      = 12
	numCodes      = 3876
)

// permEncodingTable maps between codes and sorted nibble sequences. A nibble
// sequence is stored as a uint16 with element k in bits [4k, 4k+4).
type permEncodingTable struct {
	dec [numCodes]uint16
	// enc is indexed by a packed nibble sequence; only sorted sequences have
	// meaningful entries.
	enc [1 << 16]uint16
}

var permEncoding = makePermEncoding()

func makePermEncoding() *permEncodingTable {
	p := &permEncodingTable{}
	code := uint16(0)
	for a := uint16(0); a < 16; a++ {
		for b := a; b < 16; b++ {
			for c := b; c < 16; c++ {
				for d := c; d < 16; d++ {
					v := a | b<<4 | c<<8 | d<<12
					p.dec[code] = v
					p.enc[v] = code
					code++
				}
			}
		}
	}
	if code != numCodes {
		panic("unexpected number of codes")
	}
	return p
}

// encode returns the code for the sorted nibbles.
func (p *permEncodingTable) encode(dirs [PackedTagsPerBucket]uint8) uint16 {
	v := uint16(dirs[0]) | uint16(dirs[1])<<4 | uint16(dirs[2])<<8 | uint16(dirs[3])<<12
	return p.enc[v]
}

// decode returns the sorted nibbles for code.
func (p *permEncodingTable) decode(code uint16) (dirs [PackedTagsPerBucket]uint8) {
	v := p.dec[code]
	dirs[0] = uint8(v & dirMask)
	dirs[1] = uint8(v >> 4 & dirMask)
	dirs[2] = uint8(v >> 8 & dirMask)
	dirs[3] = uint8(v >> 12 & dirMask)
	return dirs
}
