// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cuckoo

import (
	"crypto/sha1"
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/zeebo/xxh3"
)

// Hasher turns a key into a 64-bit hash. The high 32 bits select the key's
// primary bucket and the low 32 bits its tag.
type Hasher struct {
	// Hash must be deterministic: the same key must always produce the same
	// hash over the lifetime of a filter.
	Hash func(key []byte) uint64

	// Name is the name of the hash function, used in Info.
	Name string
}

// XXHasher hashes keys with XXH64. It is the default Hasher.
var XXHasher = &Hasher{
	Hash: xxhash.Sum64,
	Name: "xxhash64",
}

// XXH3Hasher hashes keys with XXH3-64.
var XXH3Hasher = &Hasher{
	Hash: xxh3.Hash,
	Name: "xxh3",
}

// SHA1Hasher hashes keys with the first 8 bytes (little-endian) of their SHA-1
// digest. It is much slower than the xxhash variants and exists for
// compatibility with filters that derive fingerprints from SHA-1.
var SHA1Hasher = &Hasher{
	Hash: func(key []byte) uint64 {
		sum := sha1.Sum(key)
		return binary.LittleEndian.Uint64(sum[:8])
	},
	Name: "sha1",
}

// numCandidates is the number of buckets a tag may occupy.
const numCandidates = 4

// murmurMul is the multiplication constant of MurmurHash2.
const murmurMul = 0x5bd1e995

// Fingerprint returns the primary bucket index and the tag of key. The tag is
// never 0.
func (f *Filter) Fingerprint(key []byte) (index uint64, tag uint32) {
	hv := f.opts.Hasher.Hash(key)
	return f.indexHash(uint32(hv >> 32)), f.tagHash(uint32(hv))
}

func (f *Filter) indexHash(hv uint32) uint64 {
	// The number of buckets is a power of two.
	return uint64(hv) & f.indexMask
}

func (f *Filter) tagHash(hv uint32) uint32 {
	tag := hv & f.tagMask
	if tag == 0 {
		// 0 marks an empty slot.
		tag = 1
	}
	return tag
}

// AltIndex returns the candidate bucket number slot (in [0, 3]) for a tag
// whose primary bucket is index. Candidate 0 is index itself; the others XOR
// index with a mix of the tag:
//
//	1: tag*0x5bd1e995
//	2: lookup3(tag)
//	3: tag*0x5bd1e995 ^ lookup3(tag)
//
// The three mixes and 0 form a group under XOR, so starting from any
// candidate of a tag yields the same set of four candidates. The insertion
// loop relies on this when it relocates an evicted tag knowing only the
// bucket it was evicted from.
func (f *Filter) AltIndex(index uint64, tag uint32, slot int) uint64 {
	switch slot {
	case 0:
		return index
	case 1:
		return f.indexHash(uint32(index) ^ tag*murmurMul)
	case 2:
		return f.indexHash(uint32(index) ^ lookup3(tag))
	case 3:
		return f.indexHash(uint32(index) ^ tag*murmurMul ^ lookup3(tag))
	default:
		panic(errors.AssertionFailedf("invalid candidate slot %d", slot))
	}
}

// lookup3 is Bob Jenkins' lookup3 hashlittle() of the 4 little-endian bytes of
// v, with an initial value of 0.
func lookup3(v uint32) uint32 {
	a := uint32(0xdeadbeef) + 4
	b, c := a, a
	a += v
	// final(a, b, c)
	c ^= b
	c -= bits.RotateLeft32(b, 14)
	a ^= c
	a -= bits.RotateLeft32(c, 11)
	b ^= a
	b -= bits.RotateLeft32(a, 25)
	c ^= b
	c -= bits.RotateLeft32(b, 16)
	a ^= c
	a -= bits.RotateLeft32(c, 4)
	b ^= a
	b -= bits.RotateLeft32(a, 14)
	c ^= b
	c -= bits.RotateLeft32(b, 24)
	return c
}
