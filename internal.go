// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cuckoo

import "github.com/cockroachdb/cuckoo/internal/table"

// TableType exports the table.Type type.
type TableType = table.Type

// The available table types.
const (
	// TableTypeSingle stores each tag at its full width ("plain" buckets).
	TableTypeSingle = table.TypeSingle
	// TableTypePacked keeps buckets semi-sorted, using one bit less per tag
	// than TableTypeSingle at the same tag width.
	TableTypePacked = table.TypePacked
)

// Rand exports the table.Rand type. It is the source of randomness for the
// insertion loop: the order in which candidate buckets are tried and the slot
// evicted from a full bucket.
type Rand = table.Rand
