// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package psis implements Pareto-smoothed importance sampling (spec.md
// §4.7): quick-select the upper tail of a log-ratio vector, fit a
// Generalized Pareto distribution to it (Zhang–Stephens), and smooth and
// normalize the weights. Grounded on
// `_examples/original_source/src/stan/services/psis/psis.hpp` for the
// exact constants and tail-smoothing shape.
package psis

import "sort"

type indexedValue struct {
	v   float64
	idx int
}

// selectTopK partitions a value/index copy of x (x itself is left
// unchanged) to find its k largest entries, then locally sorts just that tail ascending — spec.md
// §2's "quick-select / partial sort" component. Returns the k largest
// values (ascending) and their original indices in x.
func selectTopK(x []float64, k int) (values []float64, indices []int) {
	n := len(x)
	if k <= 0 || k > n {
		k = n
	}
	items := make([]indexedValue, n)
	for i, v := range x {
		items[i] = indexedValue{v, i}
	}

	// Partition so the k largest values land in items[n-k:], via
	// quickselect on the (n-k)-th order statistic.
	quickSelectNth(items, n-k)

	tail := items[n-k:]
	sort.Slice(tail, func(i, j int) bool { return tail[i].v < tail[j].v })

	values = make([]float64, k)
	indices = make([]int, k)
	for i, it := range tail {
		values[i] = it.v
		indices[i] = it.idx
	}
	return values, indices
}

// quickSelectNth rearranges items so that items[n] is in its sorted
// position, everything before it is <= items[n], everything after is >=.
// Quickselect with a Lomuto-style partition and a median-of-three pivot.
func quickSelectNth(items []indexedValue, n int) {
	lo, hi := 0, len(items)-1
	for lo < hi {
		pivotIdx := medianOfThree(items, lo, hi)
		pivotIdx = partition(items, lo, hi, pivotIdx)
		switch {
		case n < pivotIdx:
			hi = pivotIdx - 1
		case n > pivotIdx:
			lo = pivotIdx + 1
		default:
			return
		}
	}
}

func medianOfThree(items []indexedValue, lo, hi int) int {
	mid := lo + (hi-lo)/2
	a, b, c := items[lo].v, items[mid].v, items[hi].v
	switch {
	case (a <= b && b <= c) || (c <= b && b <= a):
		return mid
	case (b <= a && a <= c) || (c <= a && a <= b):
		return lo
	default:
		return hi
	}
}

func partition(items []indexedValue, lo, hi, pivotIdx int) int {
	pivot := items[pivotIdx].v
	items[pivotIdx], items[hi] = items[hi], items[pivotIdx]
	store := lo
	for i := lo; i < hi; i++ {
		if items[i].v < pivot {
			items[i], items[store] = items[store], items[i]
			store++
		}
	}
	items[store], items[hi] = items[hi], items[store]
	return store
}
