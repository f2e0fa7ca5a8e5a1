// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import (
	"fmt"

	"github.com/cockroachdb/cuckoo/internal/bitpacking"
	"github.com/cockroachdb/cuckoo/internal/invariants"
	"github.com/cockroachdb/errors"
)

// Single is a table that stores each tag at its full width. Buckets are packed
// back to back with no alignment:
//
//	bucket 0                      bucket 1
//	+--------+--------+-----+     +--------+-----
//	| slot 0 | slot 1 | ... |     | slot 0 | ...
//	+--------+--------+-----+     +--------+-----
//	 bitsPerTag bits each
type Single struct {
	numBuckets    uint64
	tagsPerBucket int
	bitsPerTag    uint
	bitsPerBucket uint64
	buf           []byte
}

var _ Table = (*Single)(nil)

// NewSingle returns a Single table with numBuckets buckets of tagsPerBucket
// slots, each bitsPerTag bits wide.
func NewSingle(numBuckets uint64, tagsPerBucket int, bitsPerTag int) *Single {
	if bitsPerTag < 1 || bitsPerTag > bitpacking.MaxWidth {
		panic(fmt.Sprintf("invalid bitsPerTag %d", bitsPerTag))
	}
	if tagsPerBucket < 1 {
		panic(fmt.Sprintf("invalid tagsPerBucket %d", tagsPerBucket))
	}
	t := &Single{
		numBuckets:    numBuckets,
		tagsPerBucket: tagsPerBucket,
		bitsPerTag:    uint(bitsPerTag),
		bitsPerBucket: uint64(tagsPerBucket) * uint64(bitsPerTag),
	}
	t.buf = makeBuffer(t.SizeInBits())
	return t
}

func (t *Single) pos(i uint64, j int) uint64 {
	return i*t.bitsPerBucket + uint64(j)*uint64(t.bitsPerTag)
}

func (t *Single) readTag(i uint64, j int) uint32 {
	return bitpacking.Get(t.buf, t.pos(i, j), t.bitsPerTag)
}

func (t *Single) writeTag(i uint64, j int, tag uint32) {
	bitpacking.Set(t.buf, t.pos(i, j), t.bitsPerTag, tag)
}

// InsertTagToBucket is part of the Table interface.
func (t *Single) InsertTagToBucket(
	i uint64, tag uint32, kickout bool, rng Rand,
) (ok bool, old uint32) {
	invariants.CheckBounds(i, t.numBuckets)
	for j := 0; j < t.tagsPerBucket; j++ {
		if t.readTag(i, j) == 0 {
			t.writeTag(i, j, tag)
			return true, 0
		}
	}
	if !kickout {
		return false, 0
	}
	j := t.rankedSlot(i, rng.IntN(t.tagsPerBucket))
	old = t.readTag(i, j)
	t.writeTag(i, j, tag)
	return true, old
}

// rankedSlot returns the slot of bucket i holding the r-th smallest tag, with
// ties broken by slot order. A Packed bucket evicts the same tag for the same
// r.
func (t *Single) rankedSlot(i uint64, r int) int {
	for j := 0; j < t.tagsPerBucket; j++ {
		tag := t.readTag(i, j)
		rank := 0
		for k := 0; k < t.tagsPerBucket; k++ {
			if other := t.readTag(i, k); other < tag || (other == tag && k < j) {
				rank++
			}
		}
		if rank == r {
			return j
		}
	}
	panic(errors.AssertionFailedf("bucket %d: no tag of rank %d", i, r))
}

// FindTagInBucket is part of the Table interface.
func (t *Single) FindTagInBucket(i uint64, tag uint32) bool {
	invariants.CheckBounds(i, t.numBuckets)
	for j := 0; j < t.tagsPerBucket; j++ {
		if t.readTag(i, j) == tag {
			return true
		}
	}
	return false
}

// DeleteTagFromBucket is part of the Table interface.
func (t *Single) DeleteTagFromBucket(i uint64, tag uint32) bool {
	invariants.CheckBounds(i, t.numBuckets)
	for j := 0; j < t.tagsPerBucket; j++ {
		if t.readTag(i, j) == tag {
			t.writeTag(i, j, 0)
			return true
		}
	}
	return false
}

// ReadBucket is part of the Table interface.
func (t *Single) ReadBucket(i uint64, tags []uint32) []uint32 {
	invariants.CheckBounds(i, t.numBuckets)
	for j := 0; j < t.tagsPerBucket; j++ {
		tags = append(tags, t.readTag(i, j))
	}
	return tags
}

// Reset is part of the Table interface.
func (t *Single) Reset() {
	clear(t.buf)
}

// NumBuckets is part of the Table interface.
func (t *Single) NumBuckets() uint64 { return t.numBuckets }

// TagsPerBucket is part of the Table interface.
func (t *Single) TagsPerBucket() int { return t.tagsPerBucket }

// BitsPerTag is part of the Table interface.
func (t *Single) BitsPerTag() int { return int(t.bitsPerTag) }

// SizeInTags is part of the Table interface.
func (t *Single) SizeInTags() uint64 { return t.numBuckets * uint64(t.tagsPerBucket) }

// SizeInBits is part of the Table interface.
func (t *Single) SizeInBits() uint64 { return t.numBuckets * t.bitsPerBucket }

// SizeInBytes is part of the Table interface.
func (t *Single) SizeInBytes() uint64 { return bytesForBits(t.SizeInBits()) }

// String implements fmt.Stringer.
func (t *Single) String() string {
	return fmt.Sprintf("single(buckets=%d, slots=%d, bits=%d)",
		t.numBuckets, t.tagsPerBucket, t.bitsPerTag)
}
