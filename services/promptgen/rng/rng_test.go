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

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeeded_Deterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 1000; i++ {
		va, vb := a(), b()
		if va != vb {
			t.Fatalf("draw %d diverged: %v != %v", i, va, vb)
		}
	}
}

func TestNewSeeded_Range(t *testing.T) {
	for _, seed := range []uint32{0, 1, 42, 0xFFFFFFFF} {
		src := NewSeeded(seed)
		for i := 0; i < 1000; i++ {
			v := src()
			if v < 0 || v >= 1 {
				t.Fatalf("seed %d draw %d out of [0,1): %v", seed, i, v)
			}
		}
	}
}

func TestNewSeeded_SeedsDiverge(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)
	same := true
	for i := 0; i < 16; i++ {
		if a() != b() {
			same = false
			break
		}
	}
	assert.False(t, same, "distinct seeds should not produce identical prefixes")
}

func TestNewSeeded_Distribution(t *testing.T) {
	// Coarse sanity only: the mean of many uniform draws sits near 0.5.
	src := NewSeeded(7)
	var sum float64
	const n = 10000
	for i := 0; i < n; i++ {
		sum += src()
	}
	mean := sum / n
	assert.InDelta(t, 0.5, mean, 0.02)
}

func TestShuffle_PreservesElements(t *testing.T) {
	in := []string{"kick", "snare", "hi-hat", "ride", "clap", "rim"}
	out := Shuffle(in, NewSeeded(3))

	require.Len(t, out, len(in))
	sortedIn := append([]string(nil), in...)
	sortedOut := append([]string(nil), out...)
	sort.Strings(sortedIn)
	sort.Strings(sortedOut)
	assert.Equal(t, sortedIn, sortedOut)
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e"}
	snapshot := append([]string(nil), in...)
	Shuffle(in, NewSeeded(9))
	assert.Equal(t, snapshot, in)
}

func TestShuffle_Deterministic(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	first := Shuffle(in, NewSeeded(11))
	second := Shuffle(in, NewSeeded(11))
	assert.Equal(t, first, second)
}

func TestShuffle_Empty(t *testing.T) {
	out := Shuffle([]string{}, NewSeeded(1))
	assert.Empty(t, out)
}

func TestPickOne(t *testing.T) {
	t.Run("uniform member pick", func(t *testing.T) {
		items := []string{"x", "y", "z"}
		src := NewSeeded(5)
		for i := 0; i < 100; i++ {
			got, err := PickOne(items, src)
			require.NoError(t, err)
			assert.Contains(t, items, got)
		}
	})

	t.Run("empty set is a hard error", func(t *testing.T) {
		_, err := PickOne([]string{}, NewSeeded(1))
		assert.ErrorIs(t, err, ErrEmptyCandidates)
	})
}

func TestDrawIntInclusive(t *testing.T) {
	src := NewSeeded(13)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := DrawIntInclusive(2, 5, src)
		if v < 2 || v > 5 {
			t.Fatalf("draw out of [2,5]: %d", v)
		}
		seen[v] = true
	}
	// All four values should show up in 500 draws.
	for want := 2; want <= 5; want++ {
		assert.True(t, seen[want], "value %d never drawn", want)
	}
}

func TestDrawIntInclusive_DegenerateRange(t *testing.T) {
	calls := 0
	var src Source = func() float64 { calls++; return 0.5 }

	assert.Equal(t, 3, DrawIntInclusive(3, 3, src))
	assert.Equal(t, 4, DrawIntInclusive(4, 1, src))
	assert.Zero(t, calls, "degenerate ranges must not consume draws")
}

func TestRollChance(t *testing.T) {
	t.Run("nil probability is certain and free", func(t *testing.T) {
		calls := 0
		var src Source = func() float64 { calls++; return 0.99 }
		assert.True(t, RollChance(nil, src))
		assert.Zero(t, calls)
	})

	t.Run("roll compares with <=", func(t *testing.T) {
		p := 0.4
		var src Source = func() float64 { return 0.4 }
		assert.True(t, RollChance(&p, src))

		src = func() float64 { return 0.41 }
		assert.False(t, RollChance(&p, src))
	})
}

func TestTap_PassThrough(t *testing.T) {
	plain := NewSeeded(21)
	var rolls []float64
	tapped := Tap(NewSeeded(21), func(v float64) { rolls = append(rolls, v) })

	for i := 0; i < 64; i++ {
		require.Equal(t, plain(), tapped())
	}
	assert.Len(t, rolls, 64)
}
