// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package blend chooses a single discrete value across multiple source
// definitions by counting cross-source frequency and biasing toward
// commonly-shared candidates.
//
// When several genres are generated at once, attributes like the time
// signature must land on one value. Blending biases toward values idiomatic
// across most of the blended sources while still letting rarer,
// source-specific values surface occasionally — the compromise a human
// curator would make between competing stylistic inputs.
package blend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/rng"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/tracing"
)

// DefaultTopHalfBias is the probability that the draw pool is restricted to
// the higher-frequency half of the candidates. Hand-tuned in the original
// engine; override with WithBias rather than re-deriving.
const DefaultTopHalfBias = 0.75

// Option configures a Blender.
type Option func(*Blender)

// WithBias overrides the top-half bias probability.
func WithBias(bias float64) Option {
	return func(b *Blender) {
		b.bias = bias
	}
}

// WithRecorder attaches a trace recorder to every blend decision.
func WithRecorder(rec *tracing.Recorder) Option {
	return func(b *Blender) {
		b.recorder = rec
	}
}

// Blender performs frequency-weighted blends with a fixed source and bias.
type Blender struct {
	source   rng.Source
	bias     float64
	recorder *tracing.Recorder
}

// New creates a Blender. The source is required.
func New(source rng.Source, opts ...Option) (*Blender, error) {
	if source == nil {
		return nil, rng.ErrNilSource
	}
	b := &Blender{source: source, bias: DefaultTopHalfBias}
	for _, opt := range opts {
		opt(b)
	}
	if b.bias < 0 || b.bias > 1 {
		return nil, fmt.Errorf("top-half bias must be in [0,1], got %v", b.bias)
	}
	return b, nil
}

// gather walks the source keys in order and returns, per distinct candidate
// value, its cross-source frequency, keeping first-encountered order.
// A key absent from byKey contributes defaults; nil defaults means such
// keys are skipped entirely.
func gather(keys []string, byKey map[string][]string, defaults []string) (order []string, freq map[string]int) {
	freq = make(map[string]int)
	for _, key := range keys {
		candidates, ok := byKey[key]
		if !ok || len(candidates) == 0 {
			if defaults == nil {
				continue
			}
			candidates = defaults
		}
		seenHere := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			c = strings.TrimSpace(c)
			if c == "" || seenHere[c] {
				continue
			}
			seenHere[c] = true
			if freq[c] == 0 {
				order = append(order, c)
			}
			freq[c]++
		}
	}
	return order, freq
}

// One blends the sources down to a single value.
//
// Description:
//
//	Candidates are accumulated per source key, counted across sources,
//	and sorted by descending frequency (ties keep first-encountered
//	order). One bias roll decides whether the draw pool is the
//	higher-frequency ceiling-half or the full list; the winner is drawn
//	uniformly from that pool.
//
// Outputs:
//
//	string - the chosen value.
//	bool - false when no source contributed any candidate.
func (b *Blender) One(keys []string, byKey map[string][]string, defaults []string) (string, bool) {
	order, freq := gather(keys, byKey, defaults)
	if len(order) == 0 {
		return "", false
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return freq[ranked[i]] > freq[ranked[j]]
	})

	topHalf := ranked[:(len(ranked)+1)/2]

	var rolls []float64
	src := b.source
	if b.recorder != nil {
		src = rng.Tap(b.source, func(v float64) { rolls = append(rolls, v) })
	}

	pool := ranked
	branch := "full list"
	if rng.RollChance(&b.bias, src) && len(topHalf) > 0 {
		pool = topHalf
		branch = "top half"
	}

	idx := rng.DrawIntInclusive(0, len(pool)-1, src)
	chosen := pool[idx]

	if b.recorder != nil {
		b.recorder.RecordDecision(tracing.Decision{
			Domain:      "blend",
			Key:         strings.Join(keys, "+"),
			BranchTaken: fmt.Sprintf("%s -> %s", branch, chosen),
			Why: fmt.Sprintf("%d distinct value(s) across %d source(s), bias %v, top half size %d",
				len(ranked), len(keys), b.bias, len(topHalf)),
			Selection: &tracing.Selection{
				Method:            tracing.MethodWeightedChance,
				ChosenIndex:       &idx,
				CandidatesCount:   len(ranked),
				CandidatesPreview: pool,
				Rolls:             rolls,
			},
		})
	}
	return chosen, true
}

// All returns the deduplicated union of every source's candidates,
// preserving discovery order. No weighting, no randomness.
func (b *Blender) All(keys []string, byKey map[string][]string, defaults []string) []string {
	order, _ := gather(keys, byKey, defaults)
	return order
}
