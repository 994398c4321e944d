// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rng

// Shuffle returns a new slice holding a Fisher-Yates permutation of items.
//
// Description:
//
//	Iterates from the last index down to 1, swapping each position with a
//	uniformly drawn earlier-or-equal index. The input slice is never
//	mutated. len(items)-1 draws are consumed for len(items) >= 2, zero
//	otherwise.
//
// Inputs:
//
//	items - the sequence to permute. May be empty.
//	src - the random source. Must be non-nil.
//
// Outputs:
//
//	[]T - a fresh slice with the permuted elements.
func Shuffle[T any](items []T, src Source) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i >= 1; i-- {
		j := int(src() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PickOne draws one element uniformly from items.
//
// An empty candidate set is a hard error (ErrEmptyCandidates): PickOne is
// the required-result primitive. Callers with a may-be-empty contract check
// length before calling.
func PickOne[T any](items []T, src Source) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyCandidates
	}
	return items[int(src()*float64(len(items)))], nil
}

// DrawIntInclusive draws an integer uniformly from [min, max].
//
// Consumes exactly one value from src when max > min. A degenerate range
// (max <= min) returns min without consuming a draw.
func DrawIntInclusive(min, max int, src Source) int {
	if max <= min {
		return min
	}
	return min + int(src()*float64(max-min+1))
}

// RollChance reports whether a probability gate passes.
//
// A nil probability is treated as certain: the gate passes and no draw is
// consumed. Otherwise one value is drawn and compared with <=, so p=0 can
// still pass on an exact zero roll, matching the original engine.
func RollChance(p *float64, src Source) bool {
	if p == nil {
		return true
	}
	return src() <= *p
}
