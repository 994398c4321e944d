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
	"fmt"
	"strings"

	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/registry"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/rng"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/tracing"
)

// Options carries the per-call inputs to Select.
type Options struct {
	// MustUse items are seeded at the head of the result, in the order
	// given. They are normalized like everything else, count toward the
	// budget, and count toward exclusion checks for subsequent picks.
	MustUse []string

	// MaxTotal overrides the definition's budget when non-nil.
	MaxTotal *int

	// Source is the random source for every draw. Required; the engine
	// never falls back to ambient randomness.
	Source rng.Source

	// Recorder receives a decision event per random branch. Nil disables
	// tracing at the cost of one presence check.
	Recorder *tracing.Recorder
}

// Selector picks unique, mutually compatible items from a definition's
// pools.
//
// Thread Safety:
//
//	Selector holds only the immutable registry and is safe for concurrent
//	use, provided each call gets its own Source and Recorder.
type Selector struct {
	registry *registry.Registry
}

// NewSelector creates a Selector. The registry may be nil, in which case
// candidates are used as-is without alias resolution.
func NewSelector(reg *registry.Registry) *Selector {
	return &Selector{registry: reg}
}

// normalize resolves a token to its canonical name when the registry knows
// it, keeping the raw token otherwise.
func (s *Selector) normalize(token string) string {
	token = strings.TrimSpace(token)
	if s.registry == nil {
		return token
	}
	return s.registry.Normalize(token)
}

// Select produces an ordered selection of unique, mutually compatible items.
//
// Description:
//
//	The result is seeded with up to budget must-use items, then pools are
//	walked in definition order. Each pool first rolls its inclusion
//	chance; a failed roll contributes nothing. The pool's pick count is
//	drawn inclusively from its quota range and clamped to the remaining
//	budget. Candidates that conflict with already-selected items are
//	dropped before the shuffle; the shuffled remainder is taken left to
//	right, skipping duplicates and items that conflict with the growing
//	selection, until the pick count is satisfied or candidates run out.
//
// Guarantees:
//
//	The output never exceeds the budget, holds no case-insensitive
//	duplicates, violates no exclusion rule, and is a pure function of
//	(definition, options, source sequence). Attaching a Recorder does not
//	change the output.
//
// Outputs:
//
//	[]string - selected items, must-use first.
//	error - rng.ErrNilSource when no source was supplied.
func (s *Selector) Select(def Definition, opts Options) ([]string, error) {
	if opts.Source == nil {
		return nil, rng.ErrNilSource
	}

	budget := def.MaxTotal
	if opts.MaxTotal != nil {
		budget = *opts.MaxTotal
	}
	if budget < 0 {
		budget = 0
	}

	rec := opts.Recorder
	src := opts.Source
	var rolls []float64
	if rec != nil {
		src = rng.Tap(opts.Source, func(v float64) { rolls = append(rolls, v) })
	}

	result := make([]string, 0, budget)
	seen := make(map[string]bool, budget)

	for _, raw := range opts.MustUse {
		if len(result) >= budget {
			break
		}
		item := s.normalize(raw)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, item)
	}
	if rec != nil && len(result) > 0 {
		rec.RecordDecision(tracing.Decision{
			Domain:      "selection",
			Key:         def.Name + "/must-use",
			BranchTaken: fmt.Sprintf("seeded %d must-use item(s)", len(result)),
			Why:         fmt.Sprintf("caller supplied %d, budget %d", len(opts.MustUse), budget),
		})
	}

	for _, poolName := range def.PoolOrder {
		if len(result) >= budget {
			break
		}
		pool, ok := def.Pools[poolName]
		if !ok {
			// Loader validation rejects this; skip defensively at runtime.
			continue
		}

		mark := len(rolls)

		if !rng.RollChance(pool.Chance, src) {
			if rec != nil {
				rec.RecordDecision(tracing.Decision{
					Domain:      "selection",
					Key:         def.Name + "/" + poolName,
					BranchTaken: "pool skipped",
					Why:         fmt.Sprintf("inclusion roll failed against chance %v", *pool.Chance),
					Selection: &tracing.Selection{
						Method: tracing.MethodWeightedChance,
						Rolls:  rolls[mark:],
					},
				})
			}
			continue
		}

		count := rng.DrawIntInclusive(pool.Pick.Min, pool.Pick.Max, src)
		if remaining := budget - len(result); count > remaining {
			count = remaining
		}
		if count <= 0 {
			if rec != nil {
				rec.RecordDecision(tracing.Decision{
					Domain:      "selection",
					Key:         def.Name + "/" + poolName,
					BranchTaken: "pool contributed nothing",
					Why:         fmt.Sprintf("quota %d-%d drew zero or no budget slots remain", pool.Pick.Min, pool.Pick.Max),
					Selection: &tracing.Selection{
						Method: tracing.MethodIndex,
						Rolls:  rolls[mark:],
					},
				})
			}
			continue
		}

		// Pre-shuffle filter: drop candidates that already conflict with
		// the selection so far. Duplicates survive until the take loop.
		candidates := make([]string, 0, len(pool.Items))
		for _, raw := range pool.Items {
			item := s.normalize(raw)
			if item == "" {
				continue
			}
			if conflictsWithAny(item, result, def.Exclusions) {
				continue
			}
			candidates = append(candidates, item)
		}

		shuffled := rng.Shuffle(candidates, src)

		picked := make([]string, 0, count)
		for _, item := range shuffled {
			if len(picked) >= count {
				break
			}
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			// Earlier picks from this same pool count too.
			if conflictsWithAny(item, picked, def.Exclusions) {
				continue
			}
			seen[key] = true
			picked = append(picked, item)
		}
		result = append(result, picked...)

		if rec != nil {
			rec.RecordDecision(tracing.Decision{
				Domain:      "selection",
				Key:         def.Name + "/" + poolName,
				BranchTaken: fmt.Sprintf("picked %d: %s", len(picked), strings.Join(picked, ", ")),
				Why: fmt.Sprintf("quota %d-%d, drew %d, %d candidate(s) after exclusion filter",
					pool.Pick.Min, pool.Pick.Max, count, len(candidates)),
				Selection: &tracing.Selection{
					Method:            tracing.MethodShuffleSlice,
					CandidatesCount:   len(candidates),
					CandidatesPreview: shuffled,
					Rolls:             rolls[mark:],
				},
			})
		}
	}

	return result, nil
}
