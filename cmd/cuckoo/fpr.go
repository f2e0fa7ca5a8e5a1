// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cockroachdb/cuckoo"
	"github.com/cockroachdb/cuckoo/internal/filtersim"
	"github.com/cockroachdb/cuckoo/internal/metricsutil"
	"github.com/cockroachdb/errors"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var fprConfig struct {
	minBits      int
	maxBits      int
	numKeys      int
	numRuns      int
	loadFactor   float64
	compareBloom bool
	plot         bool
}

var fprCmd = &cobra.Command{
	Use:   "fpr",
	Short: "measure false positive rates",
	Long: `
For each tag width between min-bits and max-bits, build filters of both table
types sized for about num-keys keys, fill them to the given load factor with
random keys and probe them with keys that were not inserted. Reports the mean
and standard deviation of the false positive rate over all runs, and the
storage used per key.

With --compare-bloom, a Bloom filter sized for the same false positive rate is
built from the same keys, showing the storage a Bloom filter would need.
`,
	Args: cobra.NoArgs,
	RunE: runFPR,
}

// fprProbesPerKey is the number of negative probes per inserted key.
const fprProbesPerKey = 10

func runFPR(cmd *cobra.Command, args []string) error {
	hasher, err := parseHasher(filterConfig.hasher)
	if err != nil {
		return err
	}
	cfg := fprSweepConfig{
		minBits:      fprConfig.minBits,
		maxBits:      fprConfig.maxBits,
		numKeys:      fprConfig.numKeys,
		numRuns:      fprConfig.numRuns,
		loadFactor:   fprConfig.loadFactor,
		compareBloom: fprConfig.compareBloom,
		plot:         fprConfig.plot,
		hasher:       hasher,
		seed:         filterConfig.seed,
	}
	return fprSweep(cmd.OutOrStdout(), newLogger(), cfg)
}

type fprSweepConfig struct {
	minBits, maxBits int
	numKeys, numRuns int
	loadFactor       float64
	compareBloom     bool
	plot             bool
	hasher           *cuckoo.Hasher
	seed             uint64
}

// fprResult is the outcome of the runs for one configuration.
type fprResult struct {
	mean, stdDev float64
	bitsPerItem  float64
	// Bloom filter sized for the mean false positive rate; only set with
	// compareBloom.
	bloomMean, bloomStdDev float64
	bloomBitsPerItem       float64
}

func fprSweep(w io.Writer, logger Logger, cfg fprSweepConfig) error {
	if cfg.minBits < 1 || cfg.maxBits < cfg.minBits {
		return errors.Newf("invalid bits range [%d, %d]", cfg.minBits, cfg.maxBits)
	}
	if cfg.loadFactor <= 0 || cfg.loadFactor > 1 {
		return errors.Newf("load factor %.2f must be in (0, 1]", cfg.loadFactor)
	}

	tbl := tablewriter.NewWriter(w)
	header := []string{"Bits", "Table", "Bits/Key", "FPR"}
	if cfg.compareBloom {
		header = append(header, "Bloom Bits/Key", "Bloom FPR")
	}
	tbl.SetHeader(header)

	tableTypes := []cuckoo.TableType{cuckoo.TableTypeSingle, cuckoo.TableTypePacked}
	series := make(map[cuckoo.TableType][]float64)
	for bits := cfg.minBits; bits <= cfg.maxBits; bits++ {
		for _, typ := range tableTypes {
			opts := &cuckoo.Options{BitsPerItem: bits, TableType: typ, Hasher: cfg.hasher}
			if err := opts.Clone().EnsureDefaults().Validate(); err != nil {
				logger.Infof("skipping %s table with %d bits: %v", typ, bits, err)
				continue
			}
			res, err := simulateCuckooFPR(cfg, opts)
			if err != nil {
				return err
			}
			row := []string{
				fmt.Sprint(bits), typ.String(), fmt.Sprintf("%.2f", res.bitsPerItem),
				filtersim.FormatFPRWithStdDev(res.mean, res.stdDev),
			}
			if cfg.compareBloom {
				row = append(row, fmt.Sprintf("%.2f", res.bloomBitsPerItem),
					filtersim.FormatFPRWithStdDev(res.bloomMean, res.bloomStdDev))
			}
			tbl.Append(row)
			logger.Infof("%d bits, %s: %s", bits, typ, filtersim.FormatFPR(res.mean))
			series[typ] = append(series[typ], res.mean)
		}
	}
	tbl.Render()

	if cfg.plot {
		for _, typ := range tableTypes {
			if len(series[typ]) < 2 {
				continue
			}
			logFPR := make([]float64, len(series[typ]))
			for i, fpr := range series[typ] {
				logFPR[i] = math.Log10(max(fpr, 1e-9))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, asciigraph.Plot(logFPR,
				asciigraph.Height(10),
				asciigraph.Caption(fmt.Sprintf("log10(FPR), %s table", typ))))
		}
	}
	return nil
}

func simulateCuckooFPR(cfg fprSweepConfig, opts *cuckoo.Options) (fprResult, error) {
	var res fprResult
	var bitsPerItem metricsutil.Welford
	var mu sync.Mutex
	var err error
	res.mean, res.stdDev, err = filtersim.SimulateFPR(cfg.numRuns, cfg.numKeys, cfg.seed,
		func(rng *rand.Rand, size int) (float64, error) {
			o := opts.Clone()
			o.Seed = rng.Uint64()
			f, keys, err := buildCuckoo(rng, size, cfg.loadFactor, o)
			if err != nil {
				return 0, err
			}
			mu.Lock()
			bitsPerItem.Add(f.BitsPerItem())
			mu.Unlock()
			positives := 0
			numProbes := fprProbesPerKey * len(keys)
			for range numProbes {
				if f.Contain(probeKey(rng)) == nil {
					positives++
				}
			}
			return float64(positives) / float64(numProbes), nil
		})
	if err != nil {
		return fprResult{}, err
	}
	res.bitsPerItem = bitsPerItem.Mean()

	if cfg.compareBloom && res.mean > 0 {
		var bloomBits metricsutil.Welford
		targetFPR := res.mean
		res.bloomMean, res.bloomStdDev, err = filtersim.SimulateFPR(cfg.numRuns, cfg.numKeys, cfg.seed,
			func(rng *rand.Rand, size int) (float64, error) {
				n := uint(max(1, size))
				bf := bloom.NewWithEstimates(n, targetFPR)
				for range n {
					bf.Add(insertKey(rng))
				}
				mu.Lock()
				bloomBits.Add(float64(bf.Cap()) / float64(n))
				mu.Unlock()
				positives := 0
				numProbes := fprProbesPerKey * int(n)
				for range numProbes {
					if bf.Test(probeKey(rng)) {
						positives++
					}
				}
				return float64(positives) / float64(numProbes), nil
			})
		if err != nil {
			return fprResult{}, err
		}
		res.bloomBitsPerItem = bloomBits.Mean()
	}
	return res, nil
}

// buildCuckoo builds a filter with room for about size keys and fills it to
// loadFactor, or until it is full. It returns the inserted keys.
func buildCuckoo(
	rng *rand.Rand, size int, loadFactor float64, opts *cuckoo.Options,
) (*cuckoo.Filter, [][]byte, error) {
	opts = opts.EnsureDefaults()
	capacity := uint64(max(1, size/opts.SlotsPerBucket))
	f, err := cuckoo.New(capacity, opts)
	if err != nil {
		return nil, nil, err
	}
	m := f.Metrics()
	n := max(1, int(loadFactor*float64(m.SizeInTags())))
	keys := make([][]byte, 0, n)
	for range n {
		key := insertKey(rng)
		if err := f.Add(key); err != nil {
			if errors.Is(err, cuckoo.ErrNotEnoughSpace) {
				break
			}
			return nil, nil, err
		}
		keys = append(keys, key)
	}
	return f, keys, nil
}

// insertKey returns a random 8-byte key. probeKey returns a random 16-byte key,
// so probe keys are never inserted keys.
func insertKey(rng *rand.Rand) []byte {
	return binary.LittleEndian.AppendUint64(nil, rng.Uint64())
}

func probeKey(rng *rand.Rand) []byte {
	key := binary.LittleEndian.AppendUint64(nil, rng.Uint64())
	return binary.LittleEndian.AppendUint64(key, rng.Uint64())
}
