// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package metricsutil contains helpers for summarizing measurements.
package metricsutil

import "math"

// Welford maintains the running mean and variance of a series of values using
// Welford's algorithm.
type Welford struct {
	count int64
	mean  float64
	m2    float64
}

// Add incorporates a new value.
func (w *Welford) Add(x float64) {
	w.count++
	delta := x - w.mean
	w.mean += delta / float64(w.count)
	w.m2 += delta * (x - w.mean)
}

// Merge incorporates all the values added to other.
func (w *Welford) Merge(other Welford) {
	if other.count == 0 {
		return
	}
	if w.count == 0 {
		*w = other
		return
	}
	n := w.count + other.count
	delta := other.mean - w.mean
	w.mean += delta * float64(other.count) / float64(n)
	w.m2 += other.m2 + delta*delta*float64(w.count)*float64(other.count)/float64(n)
	w.count = n
}

// Count returns the number of values added.
func (w *Welford) Count() int64 {
	return w.count
}

// Mean returns the mean of the values, or 0 if there are none.
func (w *Welford) Mean() float64 {
	return w.mean
}

// Variance returns the sample variance, or 0 if there are fewer than two
// values.
func (w *Welford) Variance() float64 {
	if w.count < 2 {
		return 0
	}
	return w.m2 / float64(w.count-1)
}

// StdDev returns the sample standard deviation.
func (w *Welford) StdDev() float64 {
	return math.Sqrt(w.Variance())
}
