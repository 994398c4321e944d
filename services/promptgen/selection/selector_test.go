// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/registry"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/rng"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/tracing"
)

func testDefinition() Definition {
	chance := 0.5
	return Definition{
		Name: "test-genre",
		Pools: map[string]Pool{
			"drums": {
				Pick:  PickRange{Min: 1, Max: 2},
				Items: []string{"kick", "snare", "hi-hat", "ride"},
			},
			"bass": {
				Pick:  PickRange{Min: 1, Max: 1},
				Items: []string{"sub-bass", "upright bass"},
			},
			"fx": {
				Pick:   PickRange{Min: 1, Max: 2},
				Chance: &chance,
				Items:  []string{"vinyl crackle", "tape hiss", "rain"},
			},
		},
		PoolOrder: []string{"drums", "bass", "fx"},
		MaxTotal:  5,
	}
}

func TestSelect_RequiresSource(t *testing.T) {
	s := NewSelector(nil)
	_, err := s.Select(testDefinition(), Options{})
	assert.ErrorIs(t, err, rng.ErrNilSource)
}

func TestSelect_BudgetRespected(t *testing.T) {
	s := NewSelector(nil)
	for _, budget := range []int{0, 1, 2, 3, 10} {
		b := budget
		for seed := uint32(0); seed < 25; seed++ {
			got, err := s.Select(testDefinition(), Options{
				MaxTotal: &b,
				Source:   rng.NewSeeded(seed),
			})
			require.NoError(t, err)
			if len(got) > budget {
				t.Fatalf("budget %d, seed %d: got %d items %v", budget, seed, len(got), got)
			}
		}
	}
}

func TestSelect_NoDuplicates(t *testing.T) {
	def := testDefinition()
	// Same instrument reachable from two pools, with casing noise.
	def.Pools["bass"] = Pool{
		Pick:  PickRange{Min: 2, Max: 2},
		Items: []string{"Sub-Bass", "sub-bass", "upright bass"},
	}
	s := NewSelector(nil)

	for seed := uint32(0); seed < 50; seed++ {
		got, err := s.Select(def, Options{Source: rng.NewSeeded(seed)})
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, item := range got {
			key := strings.ToLower(item)
			assert.False(t, seen[key], "seed %d: duplicate %q in %v", seed, item, got)
			seen[key] = true
		}
	}
}

func TestSelect_ExclusionScenario(t *testing.T) {
	// Spec scenario: pools {drums:[hi-hat], keys:[stabs, synth pad]}, rule
	// (stabs, synth pad), budget 2 — never both keys candidates.
	def := Definition{
		Name: "exclusion-test",
		Pools: map[string]Pool{
			"drums": {Pick: PickRange{Min: 1, Max: 1}, Items: []string{"hi-hat"}},
			"keys":  {Pick: PickRange{Min: 2, Max: 2}, Items: []string{"stabs", "synth pad"}},
		},
		PoolOrder:  []string{"drums", "keys"},
		MaxTotal:   2,
		Exclusions: []ExclusionRule{{A: "stabs", B: "synth pad"}},
	}
	s := NewSelector(nil)

	for seed := uint32(0); seed < 100; seed++ {
		got, err := s.Select(def, Options{Source: rng.NewSeeded(seed)})
		require.NoError(t, err)

		hasStabs, hasPad := false, false
		for _, item := range got {
			if item == "stabs" {
				hasStabs = true
			}
			if item == "synth pad" {
				hasPad = true
			}
		}
		assert.False(t, hasStabs && hasPad, "seed %d: both exclusion partners selected: %v", seed, got)
	}
}

func TestSelect_ExclusionAgainstMustUse(t *testing.T) {
	def := Definition{
		Name: "exclusion-must-use",
		Pools: map[string]Pool{
			"keys": {Pick: PickRange{Min: 2, Max: 2}, Items: []string{"stabs", "organ"}},
		},
		PoolOrder:  []string{"keys"},
		MaxTotal:   3,
		Exclusions: []ExclusionRule{{A: "stabs", B: "synth pad"}},
	}
	s := NewSelector(nil)

	for seed := uint32(0); seed < 20; seed++ {
		got, err := s.Select(def, Options{
			MustUse: []string{"synth pad"},
			Source:  rng.NewSeeded(seed),
		})
		require.NoError(t, err)
		assert.Contains(t, got, "synth pad")
		assert.NotContains(t, got, "stabs", "seed %d: pool pick conflicts with must-use", seed)
		assert.Contains(t, got, "organ")
	}
}

func TestSelect_MustUsePriority(t *testing.T) {
	budget := 1
	s := NewSelector(nil)
	got, err := s.Select(testDefinition(), Options{
		MustUse:  []string{"sub-bass"},
		MaxTotal: &budget,
		Source:   rng.NewSeeded(42),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-bass"}, got)
}

func TestSelect_MustUseNormalized(t *testing.T) {
	reg, err := registry.New(testRegistryEntries())
	require.NoError(t, err)

	s := NewSelector(reg)
	got, err := s.Select(testDefinition(), Options{
		MustUse: []string{"Scraper"},
		Source:  rng.NewSeeded(1),
	})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "guiro", got[0])
}

func testRegistryEntries() []registry.Entry {
	return []registry.Entry{
		{Canonical: "guiro", Aliases: []string{"scraper"}, Category: registry.CategoryPercussion},
		{Canonical: "sub-bass", Aliases: []string{"sub bass"}, Category: registry.CategoryBass},
	}
}

func TestSelect_Deterministic(t *testing.T) {
	s := NewSelector(nil)
	def := testDefinition()

	first, err := s.Select(def, Options{Source: rng.NewSeeded(42)})
	require.NoError(t, err)
	second, err := s.Select(def, Options{Source: rng.NewSeeded(42)})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Different seeds are not guaranteed to differ pairwise, but across a
	// batch of seeds at least two outcomes must diverge.
	outcomes := map[string]bool{}
	for seed := uint32(0); seed < 20; seed++ {
		got, err := s.Select(def, Options{Source: rng.NewSeeded(seed)})
		require.NoError(t, err)
		outcomes[strings.Join(got, "|")] = true
	}
	assert.Greater(t, len(outcomes), 1)
}

func TestSelect_ZeroBudget(t *testing.T) {
	def := testDefinition()
	def.MaxTotal = 0
	s := NewSelector(nil)

	got, err := s.Select(def, Options{Source: rng.NewSeeded(7)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_ChanceZeroPoolSkipped(t *testing.T) {
	zero := 0.0
	def := Definition{
		Name: "chance-test",
		Pools: map[string]Pool{
			"fx": {Pick: PickRange{Min: 1, Max: 1}, Chance: &zero, Items: []string{"rain"}},
		},
		PoolOrder: []string{"fx"},
		MaxTotal:  3,
	}
	s := NewSelector(nil)

	// chance=0 passes only on an exact 0.0 roll; a constant non-zero
	// source makes the skip branch deterministic.
	var src rng.Source = func() float64 { return 0.5 }
	got, err := s.Select(def, Options{Source: src})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_FullyExcludedPoolContributesNothing(t *testing.T) {
	def := Definition{
		Name: "all-excluded",
		Pools: map[string]Pool{
			"keys": {Pick: PickRange{Min: 2, Max: 2}, Items: []string{"stabs", "synth stabs"}},
		},
		PoolOrder:  []string{"keys"},
		MaxTotal:   4,
		Exclusions: []ExclusionRule{{A: "stabs", B: "piano"}},
	}
	s := NewSelector(nil)

	got, err := s.Select(def, Options{
		MustUse: []string{"grand piano"},
		Source:  rng.NewSeeded(3),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"grand piano"}, got, "excluded pool must contribute nothing, not error")
}

func TestSelect_TraceNeutrality(t *testing.T) {
	s := NewSelector(nil)
	def := testDefinition()

	for seed := uint32(0); seed < 25; seed++ {
		plain, err := s.Select(def, Options{Source: rng.NewSeeded(seed)})
		require.NoError(t, err)

		rec := tracing.NewRecorder(tracing.Init{RunID: "neutrality"})
		traced, err := s.Select(def, Options{Source: rng.NewSeeded(seed), Recorder: rec})
		require.NoError(t, err)

		assert.Equal(t, plain, traced, "seed %d: recorder perturbed selection", seed)

		sum := rec.Finalize()
		assert.NotZero(t, sum.DecisionCount, "seed %d: no decisions recorded", seed)
	}
}

func TestSelect_DecisionRollsRecorded(t *testing.T) {
	rec := tracing.NewRecorder(tracing.Init{RunID: "rolls"})
	s := NewSelector(nil)

	_, err := s.Select(testDefinition(), Options{Source: rng.NewSeeded(5), Recorder: rec})
	require.NoError(t, err)

	sum := rec.Finalize()
	var sawRolls bool
	for _, e := range sum.Events {
		if e.Decision != nil && e.Decision.Selection != nil && len(e.Decision.Selection.Rolls) > 0 {
			sawRolls = true
			for _, roll := range e.Decision.Selection.Rolls {
				assert.GreaterOrEqual(t, roll, 0.0)
				assert.Less(t, roll, 1.0)
			}
		}
	}
	assert.True(t, sawRolls, "expected at least one decision with raw rolls")
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Definition)
		wantErr string
	}{
		{"valid", func(_ *Definition) {}, ""},
		{"negative budget", func(d *Definition) { d.MaxTotal = -1 }, "max_total"},
		{"unknown pool", func(d *Definition) { d.PoolOrder = append(d.PoolOrder, "ghost") }, "unknown pool"},
		{"negative min", func(d *Definition) {
			p := d.Pools["drums"]
			p.Pick.Min = -1
			d.Pools["drums"] = p
		}, "pick.min"},
		{"max below min", func(d *Definition) {
			p := d.Pools["drums"]
			p.Pick = PickRange{Min: 3, Max: 1}
			d.Pools["drums"] = p
		}, "pick.max"},
		{"chance out of range", func(d *Definition) {
			bad := 1.5
			p := d.Pools["drums"]
			p.Chance = &bad
			d.Pools["drums"] = p
		}, "chance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition()
			tt.modify(&def)
			err := def.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExclusionRule_Conflicts(t *testing.T) {
	rule := ExclusionRule{A: "stabs", B: "synth pad"}

	assert.True(t, rule.Conflicts("stabs", "synth pad"))
	assert.True(t, rule.Conflicts("synth pad", "stabs"))
	assert.True(t, rule.Conflicts("Brass Stabs", "warm SYNTH PAD"))
	assert.False(t, rule.Conflicts("stabs", "piano"))
	assert.False(t, rule.Conflicts("piano", "organ"))
}
