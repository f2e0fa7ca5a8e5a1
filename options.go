// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cuckoo

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/cockroachdb/cuckoo/internal/bitpacking"
	"github.com/cockroachdb/cuckoo/internal/table"
	"github.com/cockroachdb/errors"
)

const (
	// DefaultBitsPerItem is the tag width used when New is passed nil Options.
	DefaultBitsPerItem = 12
	// DefaultSlotsPerBucket is the bucket associativity used when
	// Options.SlotsPerBucket is zero.
	DefaultSlotsPerBucket = 4
	// MaxCapacity is the largest capacity accepted by New. Bucket indexes are
	// derived from 32 bits of the key hash.
	MaxCapacity = 1 << 32
)

// DeleteMode determines which candidate buckets Delete searches.
type DeleteMode int8

const (
	// DeleteModeCompat only searches the key's primary bucket (and the
	// identity candidate, which is the same bucket). A tag that the insertion
	// loop placed in one of the other three candidates is not found, and
	// Delete returns ErrNotFound even though Contain reports the key.
	DeleteModeCompat DeleteMode = iota
	// DeleteModeAllCandidates searches all four candidate buckets, the same
	// set Add and Contain use.
	DeleteModeAllCandidates
)

// String implements fmt.Stringer.
func (m DeleteMode) String() string {
	switch m {
	case DeleteModeCompat:
		return "compat"
	case DeleteModeAllCandidates:
		return "all-candidates"
	default:
		return fmt.Sprintf("unknown(%d)", int8(m))
	}
}

// Options holds the parameters of a Filter. Zero values are replaced by
// defaults in EnsureDefaults, except for BitsPerItem which must be set.
type Options struct {
	// BitsPerItem is the width of a tag. The false positive rate is roughly
	// 8/2^BitsPerItem at high load. Must be in [1, 32] for TableTypeSingle and
	// in [4, 32] for TableTypePacked.
	BitsPerItem int

	// TableType selects the bucket layout.
	TableType TableType

	// SlotsPerBucket is the number of tags per bucket. TableTypeSingle
	// supports 1, 2, 4 and 8; TableTypePacked requires 4.
	SlotsPerBucket int

	// Hasher turns keys into 64-bit hashes. Defaults to XXHasher.
	Hasher *Hasher

	// DeleteMode selects the buckets searched by Delete.
	DeleteMode DeleteMode

	// Seed seeds the random source owned by the filter. Ignored if Rand is
	// set.
	Seed uint64

	// Rand, if set, replaces the filter's own random source.
	Rand Rand
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{BitsPerItem: DefaultBitsPerItem}
	}
	if o.SlotsPerBucket == 0 {
		o.SlotsPerBucket = DefaultSlotsPerBucket
	}
	if o.Hasher == nil {
		o.Hasher = XXHasher
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(o.Seed, o.Seed))
	}
	return o
}

// Clone creates a shallow copy of the supplied options.
func (o *Options) Clone() *Options {
	n := &Options{}
	if o != nil {
		*n = *o
	}
	return n
}

// Validate verifies that the options are mutually consistent. It assumes
// EnsureDefaults has been called.
func (o *Options) Validate() error {
	var buf strings.Builder
	switch o.TableType {
	case TableTypeSingle:
		if o.BitsPerItem < 1 || o.BitsPerItem > bitpacking.MaxWidth {
			fmt.Fprintf(&buf, "BitsPerItem (%d) must be in [1, %d]\n",
				o.BitsPerItem, bitpacking.MaxWidth)
		}
		switch o.SlotsPerBucket {
		case 1, 2, 4, 8:
		default:
			fmt.Fprintf(&buf, "SlotsPerBucket (%d) must be 1, 2, 4 or 8\n", o.SlotsPerBucket)
		}
	case TableTypePacked:
		if o.BitsPerItem < table.MinPackedBitsPerTag || o.BitsPerItem > bitpacking.MaxWidth {
			fmt.Fprintf(&buf, "BitsPerItem (%d) must be in [%d, %d] for %s tables\n",
				o.BitsPerItem, table.MinPackedBitsPerTag, bitpacking.MaxWidth, o.TableType)
		}
		if o.SlotsPerBucket != table.PackedTagsPerBucket {
			fmt.Fprintf(&buf, "SlotsPerBucket (%d) must be %d for %s tables\n",
				o.SlotsPerBucket, table.PackedTagsPerBucket, o.TableType)
		}
	default:
		fmt.Fprintf(&buf, "unknown TableType %s\n", o.TableType)
	}
	switch o.DeleteMode {
	case DeleteModeCompat, DeleteModeAllCandidates:
	default:
		fmt.Fprintf(&buf, "unknown DeleteMode %s\n", o.DeleteMode)
	}
	if o.Hasher == nil || o.Hasher.Hash == nil {
		fmt.Fprintf(&buf, "Hasher.Hash must be set\n")
	}

	if buf.Len() == 0 {
		return nil
	}
	return errors.New(buf.String())
}
