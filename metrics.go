// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cuckoo

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/redact"
)

// Metrics is a snapshot of the state of a Filter.
type Metrics struct {
	TableType      TableType
	NumBuckets     uint64
	SlotsPerBucket int
	// TagWidth is the configured width of a tag (Options.BitsPerItem).
	TagWidth int
	// BitsPerTag is the storage used per slot; it is TagWidth-1 for packed
	// tables.
	BitsPerTag int
	// Items is the number of tags in the buckets.
	Items uint64
	// Kicks is the number of tags evicted and relocated by insertions.
	Kicks          uint64
	VictimOccupied bool
	SizeInBytes    uint64
}

// Metrics returns a snapshot of the filter's metrics.
func (f *Filter) Metrics() Metrics {
	return Metrics{
		TableType:      f.opts.TableType,
		NumBuckets:     f.table.NumBuckets(),
		SlotsPerBucket: f.table.TagsPerBucket(),
		TagWidth:       f.opts.BitsPerItem,
		BitsPerTag:     f.table.BitsPerTag(),
		Items:          f.numItems,
		Kicks:          f.kicks,
		VictimOccupied: f.victim.used,
		SizeInBytes:    f.table.SizeInBytes(),
	}
}

// SizeInTags returns the total number of slots.
func (m Metrics) SizeInTags() uint64 {
	return m.NumBuckets * uint64(m.SlotsPerBucket)
}

// LoadFactor returns the fraction of occupied slots.
func (m Metrics) LoadFactor() float64 {
	return float64(m.Items) / float64(m.SizeInTags())
}

// BitsPerItem returns the storage used per stored key, or NaN if there are no
// keys.
func (m Metrics) BitsPerItem() float64 {
	if m.Items == 0 {
		return math.NaN()
	}
	return float64(m.BitsPerTag) / m.LoadFactor()
}

// String implements fmt.Stringer.
func (m Metrics) String() string {
	return redact.StringWithoutMarkers(m)
}

// SafeFormat implements redact.SafeFormatter.
func (m Metrics) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s: %s buckets of %d, %d-bit tags; %s items (%s full), %s",
		redact.SafeString(m.TableType.String()),
		crhumanize.Count(m.NumBuckets, crhumanize.Compact),
		redact.Safe(m.SlotsPerBucket),
		redact.Safe(m.TagWidth),
		crhumanize.Count(m.Items, crhumanize.Compact),
		crhumanize.Percent(m.Items, m.SizeInTags()),
		crhumanize.Bytes(m.SizeInBytes, crhumanize.Compact, crhumanize.OmitI))
	if m.Items > 0 {
		w.Printf(", %s bits/item", crhumanize.Float(m.BitsPerItem(), 1))
	}
	w.Printf(", %s kicks", crhumanize.Count(m.Kicks, crhumanize.Compact))
	if m.VictimOccupied {
		w.Printf(", victim occupied")
	}
}

// Info returns a multi-line human-readable summary of the filter.
func (f *Filter) Info() string {
	m := f.Metrics()
	var buf strings.Builder
	buf.WriteString("cuckoo filter:\n")
	fmt.Fprintf(&buf, "  hash: %s\n", f.opts.Hasher.Name)
	fmt.Fprintf(&buf, "  table: %s\n", f.table)
	fmt.Fprintf(&buf, "  buckets: %d\n", m.NumBuckets)
	fmt.Fprintf(&buf, "  keys stored: %d\n", m.Items)
	fmt.Fprintf(&buf, "  load factor: %.4f\n", m.LoadFactor())
	fmt.Fprintf(&buf, "  size: %d KB\n", m.SizeInBytes>>10)
	if m.Items > 0 {
		fmt.Fprintf(&buf, "  bits/key: %.2f\n", m.BitsPerItem())
	} else {
		buf.WriteString("  bits/key: N/A\n")
	}
	if m.VictimOccupied {
		fmt.Fprintf(&buf, "  victim: bucket %d\n", f.victim.index)
	}
	return buf.String()
}
