// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"github.com/cockroachdb/cuckoo"
	"github.com/cockroachdb/errors"
)

func parseTableType(s string) (cuckoo.TableType, error) {
	for _, t := range []cuckoo.TableType{cuckoo.TableTypeSingle, cuckoo.TableTypePacked} {
		if s == t.String() {
			return t, nil
		}
	}
	return 0, errors.Newf("unknown table type %q", s)
}

func parseHasher(s string) (*cuckoo.Hasher, error) {
	for _, h := range []*cuckoo.Hasher{cuckoo.XXHasher, cuckoo.XXH3Hasher, cuckoo.SHA1Hasher} {
		if s == h.Name {
			return h, nil
		}
	}
	return nil, errors.Newf("unknown hash function %q", s)
}

func parseDeleteMode(s string) (cuckoo.DeleteMode, error) {
	for _, m := range []cuckoo.DeleteMode{cuckoo.DeleteModeCompat, cuckoo.DeleteModeAllCandidates} {
		if s == m.String() {
			return m, nil
		}
	}
	return 0, errors.Newf("unknown delete mode %q", s)
}

// filterOptions returns the filter options selected by the command line flags.
func filterOptions() (*cuckoo.Options, error) {
	opts := &cuckoo.Options{
		BitsPerItem:    filterConfig.bitsPerItem,
		SlotsPerBucket: filterConfig.slotsPerBucket,
		Seed:           filterConfig.seed,
	}
	var err error
	if filterConfig.tableType != "" {
		if opts.TableType, err = parseTableType(filterConfig.tableType); err != nil {
			return nil, err
		}
	}
	if opts.Hasher, err = parseHasher(filterConfig.hasher); err != nil {
		return nil, err
	}
	if filterConfig.deleteMode != "" {
		if opts.DeleteMode, err = parseDeleteMode(filterConfig.deleteMode); err != nil {
			return nil, err
		}
	}
	return opts, nil
}
