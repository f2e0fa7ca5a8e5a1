// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/cuckoo"
	"github.com/cockroachdb/cuckoo/internal/filtersim"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var benchConfig struct {
	numKeys  uint64
	capacity uint64
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run the square numbers insert/lookup benchmark",
	Long: `
Insert the keys i*i for i < num-keys (as 8-byte little-endian integers) into a
filter with capacity buckets, then look up the same keys and the keys i*i+2,
none of which were inserted. Reports the throughput of each phase, the latency
distribution of insertions, the false positive rate and a summary of the
filter.
`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

const (
	minLatency = 10 * time.Nanosecond
	maxLatency = 10 * time.Second
)

func clampLatency(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

func runBench(cmd *cobra.Command, args []string) error {
	opts, err := filterOptions()
	if err != nil {
		return err
	}
	capacity := benchConfig.capacity
	if capacity == 0 {
		capacity = benchConfig.numKeys
	}
	return bench(cmd.OutOrStdout(), newLogger(), benchConfig.numKeys, capacity, opts)
}

type benchPhase struct {
	name    string
	ops     uint64
	elapsed time.Duration
}

func (p benchPhase) row() []string {
	opsPerSec := float64(p.ops) / p.elapsed.Seconds()
	return []string{
		p.name,
		string(crhumanize.Count(p.ops, crhumanize.Compact)),
		p.elapsed.Round(time.Microsecond).String(),
		string(crhumanize.Count(uint64(opsPerSec), crhumanize.Compact)),
		fmt.Sprintf("%.1f", float64(p.elapsed.Nanoseconds())/float64(max(p.ops, 1))),
	}
}

func bench(w io.Writer, logger Logger, numKeys, capacity uint64, opts *cuckoo.Options) error {
	f, err := cuckoo.New(capacity, opts)
	if err != nil {
		return err
	}
	logger.Infof("inserting %d keys into %s", numKeys, f.Metrics())

	hist := hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 1)
	var key [8]byte
	var added uint64
	start := time.Now()
	for i := uint64(0); i < numKeys; i++ {
		binary.LittleEndian.PutUint64(key[:], i*i)
		opStart := time.Now()
		err := f.Add(key[:])
		_ = hist.RecordValue(clampLatency(time.Since(opStart), minLatency, maxLatency).Nanoseconds())
		if err != nil {
			logger.Errorf("insertion of key %d failed after %d keys: %v", i*i, added, err)
			break
		}
		added++
	}
	phases := []benchPhase{{name: "add", ops: added, elapsed: time.Since(start)}}
	logger.Infof("inserted %d keys: %s", added, f.Metrics())

	start = time.Now()
	for i := uint64(0); i < added; i++ {
		binary.LittleEndian.PutUint64(key[:], i*i)
		if f.Contain(key[:]) != nil {
			return errors.AssertionFailedf("false negative for key %d", i*i)
		}
	}
	phases = append(phases, benchPhase{name: "contain (positive)", ops: added, elapsed: time.Since(start)})

	var falsePositives uint64
	start = time.Now()
	for i := uint64(0); i < numKeys; i++ {
		binary.LittleEndian.PutUint64(key[:], i*i+2)
		if f.Contain(key[:]) == nil {
			falsePositives++
		}
	}
	phases = append(phases, benchPhase{name: "contain (negative)", ops: numKeys, elapsed: time.Since(start)})

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Op", "Ops", "Elapsed", "Ops/sec", "ns/op"})
	for _, p := range phases {
		tbl.Append(p.row())
	}
	tbl.Render()

	fmt.Fprintf(w, "add latency: p50 %s  p99 %s  p99.9 %s  max %s\n",
		time.Duration(hist.ValueAtQuantile(50)),
		time.Duration(hist.ValueAtQuantile(99)),
		time.Duration(hist.ValueAtQuantile(99.9)),
		time.Duration(hist.Max()))
	if numKeys > 0 {
		fmt.Fprintf(w, "false positive rate: %s\n",
			filtersim.FormatFPR(float64(falsePositives)/float64(numKeys)))
	}
	fmt.Fprint(w, f.Info())
	return nil
}
