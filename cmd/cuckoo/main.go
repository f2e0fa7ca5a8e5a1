// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/cockroachdb/cuckoo"
	"github.com/spf13/cobra"
)

var filterConfig struct {
	bitsPerItem    int
	tableType      string
	slotsPerBucket int
	hasher         string
	deleteMode     string
	seed           uint64
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cuckoo [command] (flags)",
	Short: "cuckoo filter benchmarking tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		benchCmd,
		fprCmd,
	)

	for _, cmd := range []*cobra.Command{benchCmd, fprCmd} {
		cmd.Flags().StringVar(
			&filterConfig.hasher, "hash", cuckoo.XXHasher.Name, "key hash function (xxhash64, xxh3, sha1)")
		cmd.Flags().Uint64Var(
			&filterConfig.seed, "seed", 0, "seed for the random source of the filter")
		cmd.Flags().BoolVarP(
			&verbose, "verbose", "v", false, "enable verbose logging")
	}

	benchCmd.Flags().IntVar(
		&filterConfig.bitsPerItem, "bits", 8, "bits per tag")
	benchCmd.Flags().StringVar(
		&filterConfig.tableType, "table", cuckoo.TableTypeSingle.String(), "table type (single, packed)")
	benchCmd.Flags().IntVar(
		&filterConfig.slotsPerBucket, "slots", cuckoo.DefaultSlotsPerBucket, "tags per bucket")
	benchCmd.Flags().StringVar(
		&filterConfig.deleteMode, "delete-mode", cuckoo.DeleteModeCompat.String(),
		"buckets searched by deletes (compat, all-candidates)")
	benchCmd.Flags().Uint64VarP(
		&benchConfig.numKeys, "num-keys", "n", 1<<20, "number of keys to insert")
	benchCmd.Flags().Uint64Var(
		&benchConfig.capacity, "capacity", 0, "filter capacity in buckets (0 means num-keys)")

	fprCmd.Flags().IntVar(
		&fprConfig.minBits, "min-bits", 4, "smallest bits per tag")
	fprCmd.Flags().IntVar(
		&fprConfig.maxBits, "max-bits", 16, "largest bits per tag")
	fprCmd.Flags().IntVarP(
		&fprConfig.numKeys, "num-keys", "n", 20_000, "average number of keys in each filter")
	fprCmd.Flags().IntVar(
		&fprConfig.numRuns, "runs", 20, "number of filters built for each configuration")
	fprCmd.Flags().Float64Var(
		&fprConfig.loadFactor, "load", 0.95, "fraction of the slots filled before probing")
	fprCmd.Flags().BoolVar(
		&fprConfig.compareBloom, "compare-bloom", false,
		"also measure a Bloom filter sized for the same false positive rate")
	fprCmd.Flags().BoolVar(
		&fprConfig.plot, "plot", false, "plot the false positive rates")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
