// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package cuckoo implements cuckoo filters: approximate set membership with
// support for deletion.
//
// A key is reduced to a short non-zero tag and a primary bucket. The tag may
// live in any of four candidate buckets derived from the primary bucket and the
// tag; Add tries them in random order and, when all are full, evicts a random
// resident tag and relocates it, up to a fixed number of rounds. If the rounds
// run out, the homeless tag is parked in a single-entry victim cache and the
// filter refuses further insertions until a deletion makes room.
//
// Contain never reports a false negative for a key that was added and not
// deleted. False positives happen when another key with the same tag shares a
// candidate bucket; their rate is roughly 2*SlotsPerBucket/2^BitsPerItem at
// full load.
//
// A Filter is not safe for concurrent use. Callers must serialize Add and
// Delete; Contain may run concurrently with other Contain calls only.
package cuckoo

import (
	"math"
	"slices"

	"github.com/cockroachdb/cuckoo/internal/bitpacking"
	"github.com/cockroachdb/cuckoo/internal/invariants"
	"github.com/cockroachdb/cuckoo/internal/table"
	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by Contain and Delete when the key is not in the
// filter.
var ErrNotFound = errors.New("cuckoo: not found")

// ErrNotEnoughSpace is returned by Add when the filter is full: a previous
// insertion has left a tag in the victim cache.
var ErrNotEnoughSpace = errors.New("cuckoo: not enough space")

// maxCuckooCount is the maximum number of eviction rounds before an insertion
// gives up and parks the displaced tag in the victim cache.
const maxCuckooCount = 500

type victimCache struct {
	index uint64
	tag   uint32
	used  bool
}

// Filter is a cuckoo filter.
type Filter struct {
	opts      *Options
	table     table.Table
	indexMask uint64
	tagMask   uint32

	// numItems is the number of tags in the table; a tag held in the victim
	// cache is not counted.
	numItems uint64
	victim   victimCache
	// kicks is the number of tags evicted by the insertion loop.
	kicks uint64
}

// New returns an empty filter with at least capacity buckets (rounded up to a
// power of two). Passing nil options uses DefaultBitsPerItem and the defaults
// of the other options.
func New(capacity uint64, opts *Options) (*Filter, error) {
	if opts == nil {
		opts = &Options{BitsPerItem: DefaultBitsPerItem}
	}
	opts = opts.Clone().EnsureDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if capacity == 0 || capacity > MaxCapacity {
		return nil, errors.Newf("cuckoo: capacity (%d) must be in [1, %d]", capacity, uint64(MaxCapacity))
	}
	numBuckets := nextPowerOf2(capacity)
	f := &Filter{
		opts:      opts,
		table:     table.New(opts.TableType, numBuckets, opts.SlotsPerBucket, opts.BitsPerItem),
		indexMask: numBuckets - 1,
		tagMask:   bitpacking.Mask(uint(opts.BitsPerItem)),
	}
	return f, nil
}

// nextPowerOf2 returns the smallest power of two >= n, for n >= 1.
func nextPowerOf2(n uint64) uint64 {
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// Add inserts key into the filter. It returns ErrNotEnoughSpace if the victim
// cache is occupied. Otherwise the key is added, even if that leaves another
// tag in the victim cache.
//
// Adding the same key twice stores two copies of its tag; it must then be
// deleted twice.
func (f *Filter) Add(key []byte) error {
	if f.victim.used {
		return ErrNotEnoughSpace
	}
	index, tag := f.Fingerprint(key)
	f.addImpl(index, tag)
	return nil
}

// addImpl places tag, whose candidate set contains index, in the table. If it
// cannot find room within maxCuckooCount rounds, the last displaced tag is
// stored in the victim cache.
func (f *Filter) addImpl(index uint64, tag uint32) {
	curIndex, curTag := index, tag
	for range maxCuckooCount {
		order := f.candidateOrder()
		var evicted uint32
		for k, slot := range order {
			// Only the last candidate of a round may evict.
			kickout := k == numCandidates-1
			ok, old := f.table.InsertTagToBucket(f.AltIndex(curIndex, curTag, slot), curTag, kickout, f.opts.Rand)
			if ok && old == 0 {
				f.numItems++
				return
			}
			evicted = old
		}
		f.kicks++
		curIndex = f.AltIndex(curIndex, curTag, order[numCandidates-1])
		curTag = evicted
	}
	f.victim = victimCache{index: curIndex, tag: curTag, used: true}
}

// candidateOrder returns a random permutation of the candidate slots.
func (f *Filter) candidateOrder() [numCandidates]int {
	order := [numCandidates]int{0, 1, 2, 3}
	for i := numCandidates - 1; i > 0; i-- {
		j := f.opts.Rand.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

func (f *Filter) candidates(index uint64, tag uint32) [numCandidates]uint64 {
	var c [numCandidates]uint64
	for slot := range c {
		c[slot] = f.AltIndex(index, tag, slot)
	}
	return c
}

// Contain returns nil if key may be in the filter and ErrNotFound if it is
// definitely not.
func (f *Filter) Contain(key []byte) error {
	index, tag := f.Fingerprint(key)
	c := f.candidates(index, tag)
	if f.victim.used && f.victim.tag == tag && slices.Contains(c[:], f.victim.index) {
		return nil
	}
	for _, i := range c {
		if f.table.FindTagInBucket(i, tag) {
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes one copy of key's tag from the filter. It returns ErrNotFound
// if no copy was found in the buckets searched (see DeleteMode) or in the
// victim cache.
//
// Deleting a key that was never added may remove the tag of a different key
// and introduce a false negative for it.
func (f *Filter) Delete(key []byte) error {
	i1, tag := f.Fingerprint(key)
	var c []uint64
	switch f.opts.DeleteMode {
	case DeleteModeAllCandidates:
		all := f.candidates(i1, tag)
		c = all[:]
	default:
		c = []uint64{i1, f.AltIndex(i1, tag, 0)}
	}

	for _, i := range c {
		if f.table.DeleteTagFromBucket(i, tag) {
			f.numItems = invariants.SafeSub(f.numItems, 1)
			f.reinsertVictim()
			return nil
		}
	}
	if f.victim.used && f.victim.tag == tag && slices.Contains(c, f.victim.index) {
		// The victim is not counted in numItems.
		f.victim.used = false
		return nil
	}
	return ErrNotFound
}

// reinsertVictim moves the tag in the victim cache, if any, back into the
// table now that a slot has been freed. The attempt may end with a tag in the
// victim cache again.
func (f *Filter) reinsertVictim() {
	if !f.victim.used {
		return
	}
	v := f.victim
	f.victim.used = false
	f.addImpl(v.index, v.tag)
}

// Reset removes all keys from the filter, keeping its storage.
func (f *Filter) Reset() {
	f.table.Reset()
	f.numItems = 0
	f.kicks = 0
	f.victim = victimCache{}
}

// Size returns the number of tags stored in the buckets. A tag held in the
// victim cache is not counted.
func (f *Filter) Size() uint64 {
	return f.numItems
}

// SizeInBytes returns the size of the bucket storage.
func (f *Filter) SizeInBytes() uint64 {
	return f.table.SizeInBytes()
}

// LoadFactor returns the fraction of occupied slots.
func (f *Filter) LoadFactor() float64 {
	return float64(f.numItems) / float64(f.table.SizeInTags())
}

// BitsPerItem returns the number of bits of storage used per stored key. It
// returns NaN if the filter is empty.
func (f *Filter) BitsPerItem() float64 {
	if f.numItems == 0 {
		return math.NaN()
	}
	return float64(f.table.BitsPerTag()) / f.LoadFactor()
}

// VictimOccupied returns true if the victim cache holds a tag, in which case
// Add returns ErrNotEnoughSpace.
func (f *Filter) VictimOccupied() bool {
	return f.victim.used
}
