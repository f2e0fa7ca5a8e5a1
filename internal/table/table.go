// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package table implements the bucket storage of a cuckoo filter.
//
// A table is a fixed array of buckets, each holding a fixed number of tag
// slots. A tag is a non-zero integer of up to 32 bits; the value 0 marks an
// empty slot. Two layouts are provided:
//
//   - Single stores every tag at full width.
//   - Packed keeps the tags of a bucket sorted and stores the high 4 bits of
//     the four tags as a single 12-bit rank code, saving one bit per tag.
//
// The backing buffer is allocated once, when the table is created, and is
// never resized.
package table

import (
	"fmt"

	"github.com/cockroachdb/cuckoo/internal/bitpacking"
)

// Type identifies a table layout.
type Type int8

const (
	// TypeSingle stores each tag at its full width.
	TypeSingle Type = iota
	// TypePacked keeps buckets semi-sorted and compresses the sort order.
	TypePacked
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TypeSingle:
		return "single"
	case TypePacked:
		return "packed"
	default:
		return fmt.Sprintf("unknown(%d)", int8(t))
	}
}

// Rand is the source of randomness used to pick which tag to evict from a full
// bucket. *rand.Rand from math/rand/v2 implements it.
type Rand interface {
	// IntN returns a uniformly distributed integer in [0, n).
	IntN(n int) int
}

// Table is the storage interface shared by the table layouts.
type Table interface {
	// InsertTagToBucket stores tag in an empty slot of bucket i and returns
	// (true, 0). If the bucket is full and kickout is false, it returns
	// (false, 0) and leaves the bucket untouched. If the bucket is full and
	// kickout is true, the r-th smallest tag of the bucket, with r drawn
	// uniformly using rng, is replaced by tag and returned as (true, old).
	// Ranking by value makes the choice independent of the layout.
	InsertTagToBucket(i uint64, tag uint32, kickout bool, rng Rand) (ok bool, old uint32)
	// FindTagInBucket returns true if tag occupies any slot of bucket i.
	FindTagInBucket(i uint64, tag uint32) bool
	// DeleteTagFromBucket removes one occurrence of tag from bucket i and
	// reports whether there was one.
	DeleteTagFromBucket(i uint64, tag uint32) bool
	// ReadBucket appends the contents of bucket i, in slot order, to tags.
	// Empty slots are reported as 0.
	ReadBucket(i uint64, tags []uint32) []uint32
	// Reset empties every bucket.
	Reset()

	// NumBuckets returns the number of buckets.
	NumBuckets() uint64
	// TagsPerBucket returns the number of slots in each bucket.
	TagsPerBucket() int
	// BitsPerTag returns the number of bits of storage used per slot. For a
	// packed table this is one less than the tag width.
	BitsPerTag() int
	// SizeInTags returns the total number of slots.
	SizeInTags() uint64
	// SizeInBits returns the size of the bucket storage in bits.
	SizeInBits() uint64
	// SizeInBytes returns the size of the bucket storage in bytes.
	SizeInBytes() uint64

	fmt.Stringer
}

// New returns a table of the given type. The caller is responsible for
// validating the parameters; see NewSingle and NewPacked.
func New(typ Type, numBuckets uint64, tagsPerBucket int, bitsPerTag int) Table {
	switch typ {
	case TypeSingle:
		return NewSingle(numBuckets, tagsPerBucket, bitsPerTag)
	case TypePacked:
		if tagsPerBucket != PackedTagsPerBucket {
			panic(fmt.Sprintf("packed table requires %d tags per bucket, got %d",
				PackedTagsPerBucket, tagsPerBucket))
		}
		return NewPacked(numBuckets, bitsPerTag)
	default:
		panic(fmt.Sprintf("unknown table type %d", typ))
	}
}

func bytesForBits(bits uint64) uint64 {
	return (bits + 7) / 8
}

func makeBuffer(bits uint64) []byte {
	return make([]byte, bitpacking.BufferSize(bits))
}
