// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package filtersim runs false positive rate experiments on filters.
package filtersim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/cuckoo/internal/metricsutil"
	"golang.org/x/sync/errgroup"
)

// Experiment builds a filter with size keys, using rng for all randomness, and
// returns the fraction of negative probes it reported as present.
type Experiment func(rng *rand.Rand, size int) (fpr float64, err error)

// SimulateFPR runs numRuns experiments in parallel and returns the mean and
// standard deviation of their false positive rates. The size of each run is
// drawn from avgSize ± 10%. Run i is seeded with (seed, i), so the results do
// not depend on scheduling.
func SimulateFPR(
	numRuns, avgSize int, seed uint64, runExperiment Experiment,
) (mean, stddev float64, _ error) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	var fprMu sync.Mutex
	var fpr metricsutil.Welford
	for i := range numRuns {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(i)))
			size := avgSize
			if spread := avgSize * 2 / 10; spread > 0 {
				size = avgSize - avgSize/10 + rng.IntN(spread)
			}
			falsePositiveRate, err := runExperiment(rng, size)
			if err != nil {
				return err
			}
			fprMu.Lock()
			defer fprMu.Unlock()
			fpr.Add(falsePositiveRate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return fpr.Mean(), fpr.StdDev(), nil
}

// FormatFPR formats a false positive rate as a percentage with "1 in N" ratio.
func FormatFPR(fpr float64) string {
	if fpr <= 0 {
		return "0%"
	}
	l10 := min(3, -int(math.Floor(math.Log10(fpr))))
	return fmt.Sprintf("%.*f%% (1 in %.*f)", l10, fpr*100, max(0, 3-l10), 1.0/fpr)
}

// FormatFPRWithStdDev formats a false positive rate mean and standard deviation.
func FormatFPRWithStdDev(mean, stdDev float64) string {
	return fmt.Sprintf("%s ± %s", FormatFPR(mean), crhumanize.Percent(stdDev, mean))
}
