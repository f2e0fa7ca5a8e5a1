// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same value (modulo n).
type fixedRand int

func (r fixedRand) IntN(n int) int { return int(r) % n }

func TestTableDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var tbl Table
		datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
			var bucket, tag int
			scanBucketTag := func() {
				td.ScanArgs(t, "bucket", &bucket)
				td.ScanArgs(t, "tag", &tag)
			}
			switch td.Cmd {
			case "new":
				var typ string
				var buckets, slots, bits int
				td.ScanArgs(t, "type", &typ)
				td.ScanArgs(t, "buckets", &buckets)
				td.ScanArgs(t, "slots", &slots)
				td.ScanArgs(t, "bits", &bits)
				switch typ {
				case "single":
					tbl = New(TypeSingle, uint64(buckets), slots, bits)
				case "packed":
					tbl = New(TypePacked, uint64(buckets), slots, bits)
				default:
					td.Fatalf(t, "unknown table type %q", typ)
				}
				return tbl.String() + "\n"

			case "size":
				return fmt.Sprintf("tags=%d bits/tag=%d bits=%d bytes=%d\n",
					tbl.SizeInTags(), tbl.BitsPerTag(), tbl.SizeInBits(), tbl.SizeInBytes())

			case "insert":
				scanBucketTag()
				var r int
				td.MaybeScanArgs(t, "rand", &r)
				ok, old := tbl.InsertTagToBucket(uint64(bucket), uint32(tag), td.HasArg("kickout"), fixedRand(r))
				switch {
				case !ok:
					return "full\n"
				case old != 0:
					return fmt.Sprintf("kicked out %d\n", old)
				default:
					return "ok\n"
				}

			case "find":
				scanBucketTag()
				return fmt.Sprintf("%t\n", tbl.FindTagInBucket(uint64(bucket), uint32(tag)))

			case "delete":
				scanBucketTag()
				return fmt.Sprintf("%t\n", tbl.DeleteTagFromBucket(uint64(bucket), uint32(tag)))

			case "print":
				var buf strings.Builder
				for i := uint64(0); i < tbl.NumBuckets(); i++ {
					fmt.Fprintf(&buf, "%d: %v\n", i, tbl.ReadBucket(i, nil))
				}
				return buf.String()

			case "reset":
				tbl.Reset()
				return "ok\n"

			default:
				td.Fatalf(t, "unknown command %q", td.Cmd)
				return ""
			}
		})
	})
}

func TestPermEncoding(t *testing.T) {
	seen := make(map[[PackedTagsPerBucket]uint8]bool)
	for code := uint16(0); code < numCodes; code++ {
		dirs := permEncoding.decode(code)
		require.True(t, slices.IsSorted(dirs[:]), "code %d: %v", code, dirs)
		require.False(t, seen[dirs], "code %d: duplicate %v", code, dirs)
		seen[dirs] = true
		require.Equal(t, code, permEncoding.encode(dirs))
	}
	// An empty bucket must be encoded as all zeroes.
	require.Equal(t, uint16(0), permEncoding.encode([PackedTagsPerBucket]uint8{}))
	require.Equal(t, [PackedTagsPerBucket]uint8{15, 15, 15, 15}, permEncoding.decode(numCodes-1))
}

func TestSizes(t *testing.T) {
	testCases := []struct {
		typ        Type
		buckets    uint64
		slots      int
		bits       int
		bitsPerTag int
		bytes      uint64
	}{
		{TypeSingle, 1, 4, 8, 8, 4},
		{TypeSingle, 1024, 4, 12, 12, 6144},
		{TypeSingle, 16, 2, 5, 5, 20},
		{TypeSingle, 8, 8, 32, 32, 256},
		{TypePacked, 1, 4, 8, 7, 4},
		{TypePacked, 1024, 4, 13, 12, 6144},
		{TypePacked, 16, 4, 4, 3, 24},
		{TypePacked, 2, 4, 6, 5, 5},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s/%d/%d/%d", tc.typ, tc.buckets, tc.slots, tc.bits), func(t *testing.T) {
			tbl := New(tc.typ, tc.buckets, tc.slots, tc.bits)
			require.Equal(t, tc.buckets, tbl.NumBuckets())
			require.Equal(t, tc.slots, tbl.TagsPerBucket())
			require.Equal(t, tc.buckets*uint64(tc.slots), tbl.SizeInTags())
			require.Equal(t, tc.bitsPerTag, tbl.BitsPerTag())
			require.Equal(t, tbl.SizeInTags()*uint64(tc.bitsPerTag), tbl.SizeInBits())
			require.Equal(t, tc.bytes, tbl.SizeInBytes())
		})
	}
}

// TestPackedNarrowTags uses 4-bit tags, which leave no low bits, in a table
// whose size is a whole number of bytes.
func TestPackedNarrowTags(t *testing.T) {
	tbl := NewPacked(2, 4)
	require.Equal(t, uint64(3), tbl.SizeInBytes())
	for _, tag := range []uint32{5, 15, 1, 5} {
		ok, old := tbl.InsertTagToBucket(1, tag, false, fixedRand(0))
		require.True(t, ok)
		require.Zero(t, old)
	}
	require.Equal(t, []uint32{1, 5, 5, 15}, tbl.ReadBucket(1, nil))
	require.Equal(t, []uint32{0, 0, 0, 0}, tbl.ReadBucket(0, nil))
	require.True(t, tbl.FindTagInBucket(1, 15))
	require.False(t, tbl.FindTagInBucket(1, 7))

	ok, old := tbl.InsertTagToBucket(1, 7, true, fixedRand(3))
	require.True(t, ok)
	require.Equal(t, uint32(15), old)
	require.Equal(t, []uint32{1, 5, 5, 7}, tbl.ReadBucket(1, nil))

	require.True(t, tbl.DeleteTagFromBucket(1, 5))
	require.Equal(t, []uint32{0, 1, 5, 7}, tbl.ReadBucket(1, nil))
	require.False(t, tbl.FindTagInBucket(0, 1))
}

// TestEvictionMatchesAcrossLayouts checks that both layouts evict the same tag
// from the same bucket contents, for every random value.
func TestEvictionMatchesAcrossLayouts(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		single, packed := NewSingle(1, PackedTagsPerBucket, 8), NewPacked(1, 8)
		for range PackedTagsPerBucket {
			// A small tag space produces duplicates.
			tag := 1 + uint32(rng.IntN(6))
			single.InsertTagToBucket(0, tag, false, nil)
			packed.InsertTagToBucket(0, tag, false, nil)
		}
		r := fixedRand(rng.IntN(PackedTagsPerBucket))
		_, old1 := single.InsertTagToBucket(0, 100, true, r)
		_, old2 := packed.InsertTagToBucket(0, 100, true, r)
		require.Equal(t, old1, old2)
		checkBucket(t, TypeSingle, single.ReadBucket(0, nil), packed.ReadBucket(0, nil))
	}
}

func TestNewPanics(t *testing.T) {
	require.Panics(t, func() { New(TypePacked, 4, 2, 8) })
	require.Panics(t, func() { New(TypePacked, 4, 4, 3) })
	require.Panics(t, func() { New(TypeSingle, 4, 4, 0) })
	require.Panics(t, func() { New(TypeSingle, 4, 4, 33) })
	require.Panics(t, func() { New(Type(7), 4, 4, 8) })
}

// TestRandomizedAgainstModel runs random operations against both table types
// and checks that every bucket holds the same multiset of tags as a simple
// model.
func TestRandomizedAgainstModel(t *testing.T) {
	for _, typ := range []Type{TypeSingle, TypePacked} {
		for _, bits := range []int{4, 7, 8, 13, 16, 32} {
			t.Run(fmt.Sprintf("%s/bits=%d", typ, bits), func(t *testing.T) {
				seed := uint64(bits)<<8 | uint64(typ)
				rng := rand.New(rand.NewPCG(seed, seed))
				const numBuckets = 8
				tbl := New(typ, numBuckets, PackedTagsPerBucket, bits)
				model := make([][]uint32, numBuckets)
				maxTag := uint32(1)<<bits - 1
				randTag := func() uint32 {
					if rng.IntN(4) == 0 {
						// Use a small tag space to exercise duplicates.
						return 1 + uint32(rng.IntN(3))
					}
					return 1 + rng.Uint32N(maxTag)
				}

				for range 5000 {
					i := uint64(rng.IntN(numBuckets))
					switch rng.IntN(3) {
					case 0:
						tag := randTag()
						kickout := rng.IntN(2) == 0
						before := tbl.ReadBucket(i, nil)
						ok, old := tbl.InsertTagToBucket(i, tag, kickout, rng)
						switch {
						case len(model[i]) < PackedTagsPerBucket:
							require.True(t, ok)
							require.Zero(t, old)
							model[i] = append(model[i], tag)
						case !kickout:
							require.False(t, ok)
							require.Equal(t, before, tbl.ReadBucket(i, nil))
						default:
							require.True(t, ok)
							require.NotZero(t, old)
							j := slices.Index(model[i], old)
							require.NotEqual(t, -1, j)
							model[i][j] = tag
						}
					case 1:
						tag := randTag()
						require.Equal(t, slices.Contains(model[i], tag), tbl.FindTagInBucket(i, tag))
					case 2:
						var tag uint32
						if len(model[i]) > 0 && rng.IntN(2) == 0 {
							tag = model[i][rng.IntN(len(model[i]))]
						} else {
							tag = randTag()
						}
						j := slices.Index(model[i], tag)
						require.Equal(t, j != -1, tbl.DeleteTagFromBucket(i, tag))
						if j != -1 {
							model[i] = slices.Delete(model[i], j, j+1)
						}
					}
					checkBucket(t, typ, tbl.ReadBucket(i, nil), model[i])
				}
				tbl.Reset()
				for i := uint64(0); i < numBuckets; i++ {
					checkBucket(t, typ, tbl.ReadBucket(i, nil), nil)
				}
			})
		}
	}
}

func checkBucket(t *testing.T, typ Type, actual []uint32, expected []uint32) {
	t.Helper()
	if typ == TypePacked {
		require.True(t, slices.IsSorted(actual), "%v", actual)
	}
	var occupied []uint32
	for _, tag := range actual {
		if tag != 0 {
			occupied = append(occupied, tag)
		}
	}
	expected = slices.Clone(expected)
	slices.Sort(occupied)
	slices.Sort(expected)
	require.Equal(t, len(expected), len(occupied), "actual %v, expected %v", actual, expected)
	if len(expected) > 0 {
		require.Equal(t, expected, occupied)
	}
}
