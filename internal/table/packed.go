// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/cuckoo/internal/bitpacking"
	"github.com/cockroachdb/cuckoo/internal/invariants"
	"github.com/cockroachdb/errors"
)

// PackedTagsPerBucket is the (fixed) number of slots in a Packed bucket.
const PackedTagsPerBucket = 4

// MinPackedBitsPerTag is the smallest tag width supported by Packed.
const MinPackedBitsPerTag = dirBitsPerTag

// Packed is a semi-sorted table. The four tags of a bucket are kept in
// ascending order (empty slots, being 0, come first). Each tag is split into
// its high 4 bits (the "dir" bits) and the remaining low bits. Because the tags
// are sorted, so are their dir bits, and the sorted dir sequence is stored as a
// 12-bit rank code (see permEncodingTable):
//
//	+---------+--------+--------+--------+--------+
//	| code:12 | low[0] | low[1] | low[2] | low[3] |
//	+---------+--------+--------+--------+--------+
//	           bitsPerTag-4 bits each
//
// A bucket takes 12 + 4*(bitsPerTag-4) = 4*(bitsPerTag-1) bits.
type Packed struct {
	numBuckets    uint64
	bitsPerTag    uint
	lowBits       uint
	bitsPerBucket uint64
	buf           []byte
}

var _ Table = (*Packed)(nil)

// NewPacked returns a Packed table with numBuckets buckets holding tags of
// bitsPerTag bits.
func NewPacked(numBuckets uint64, bitsPerTag int) *Packed {
	if bitsPerTag < MinPackedBitsPerTag || bitsPerTag > bitpacking.MaxWidth {
		panic(fmt.Sprintf("invalid bitsPerTag %d", bitsPerTag))
	}
	t := &Packed{
		numBuckets:    numBuckets,
		bitsPerTag:    uint(bitsPerTag),
		lowBits:       uint(bitsPerTag - dirBitsPerTag),
		bitsPerBucket: PackedTagsPerBucket * uint64(bitsPerTag-1),
	}
	t.buf = makeBuffer(t.SizeInBits())
	return t
}

type packedBucket [PackedTagsPerBucket]uint32

func (t *Packed) readBucket(i uint64) packedBucket {
	invariants.CheckBounds(i, t.numBuckets)
	pos := i * t.bitsPerBucket
	code := bitpacking.Get(t.buf, pos, codeBits)
	if invariants.Enabled && code >= numCodes {
		panic(errors.AssertionFailedf("bucket %d: invalid code %d", i, code))
	}
	dirs := permEncoding.decode(uint16(code))
	pos += codeBits
	var b packedBucket
	for j := range b {
		low := bitpacking.Get(t.buf, pos, t.lowBits)
		b[j] = uint32(dirs[j])<<t.lowBits | low
		pos += uint64(t.lowBits)
	}
	if invariants.Enabled && !slices.IsSorted(b[:]) {
		panic(errors.AssertionFailedf("bucket %d: tags not sorted: %v", i, b))
	}
	return b
}

// writeBucket sorts b and stores it as bucket i.
func (t *Packed) writeBucket(i uint64, b packedBucket) {
	slices.Sort(b[:])
	var dirs [PackedTagsPerBucket]uint8
	for j := range b {
		dirs[j] = uint8(b[j] >> t.lowBits & dirMask)
	}
	pos := i * t.bitsPerBucket
	bitpacking.Set(t.buf, pos, codeBits, uint32(permEncoding.encode(dirs)))
	pos += codeBits
	for j := range b {
		bitpacking.Set(t.buf, pos, t.lowBits, b[j])
		pos += uint64(t.lowBits)
	}
}

// InsertTagToBucket is part of the Table interface.
func (t *Packed) InsertTagToBucket(
	i uint64, tag uint32, kickout bool, rng Rand,
) (ok bool, old uint32) {
	b := t.readBucket(i)
	tag &= bitpacking.Mask(t.bitsPerTag)
	for j := range b {
		if b[j] == 0 {
			b[j] = tag
			t.writeBucket(i, b)
			return true, 0
		}
	}
	if !kickout {
		return false, 0
	}
	r := rng.IntN(PackedTagsPerBucket)
	old = b[r]
	b[r] = tag
	t.writeBucket(i, b)
	return true, old
}

// FindTagInBucket is part of the Table interface.
func (t *Packed) FindTagInBucket(i uint64, tag uint32) bool {
	b := t.readBucket(i)
	for j := range b {
		if b[j] == tag {
			return true
		}
		if b[j] > tag {
			// The rest of the bucket is larger.
			break
		}
	}
	return false
}

// DeleteTagFromBucket is part of the Table interface.
func (t *Packed) DeleteTagFromBucket(i uint64, tag uint32) bool {
	b := t.readBucket(i)
	for j := range b {
		if b[j] == tag {
			b[j] = 0
			t.writeBucket(i, b)
			return true
		}
	}
	return false
}

// ReadBucket is part of the Table interface.
func (t *Packed) ReadBucket(i uint64, tags []uint32) []uint32 {
	b := t.readBucket(i)
	return append(tags, b[:]...)
}

// Reset is part of the Table interface.
func (t *Packed) Reset() {
	clear(t.buf)
}

// NumBuckets is part of the Table interface.
func (t *Packed) NumBuckets() uint64 { return t.numBuckets }

// TagsPerBucket is part of the Table interface.
func (t *Packed) TagsPerBucket() int { return PackedTagsPerBucket }

// BitsPerTag is part of the Table interface.
func (t *Packed) BitsPerTag() int { return int(t.bitsPerTag) - 1 }

// SizeInTags is part of the Table interface.
func (t *Packed) SizeInTags() uint64 { return t.numBuckets * PackedTagsPerBucket }

// SizeInBits is part of the Table interface.
func (t *Packed) SizeInBits() uint64 { return t.numBuckets * t.bitsPerBucket }

// SizeInBytes is part of the Table interface.
func (t *Packed) SizeInBytes() uint64 { return bytesForBits(t.SizeInBits()) }

// String implements fmt.Stringer.
func (t *Packed) String() string {
	return fmt.Sprintf("packed(buckets=%d, slots=%d, bits=%d)",
		t.numBuckets, PackedTagsPerBucket, t.bitsPerTag)
}
