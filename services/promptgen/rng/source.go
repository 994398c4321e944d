// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rng provides the deterministic random source the selection engine
// draws from, plus the combinatorial primitives built on top of it.
//
// Every engine operation takes an explicit Source. Nothing in this package
// (or in the packages above it) reads ambient random state; a convenience
// non-reproducible source exists only for outermost call sites such as the
// CLI.
//
// # Determinism
//
// NewSeeded implements Mulberry32: a 32-bit additive-state generator with
// two xor/multiply mixing rounds. The mixing step uses only 32-bit integer
// arithmetic, so the same seed produces the same infinite sequence on every
// platform. The float conversion happens once, at the output boundary.
//
// Thread Safety:
//
//	A Source is a stateful closure and is NOT safe for concurrent use.
//	Give each concurrent caller its own Source.
package rng

import (
	"errors"
	"math/rand"
	"time"
)

// Source is a stateful generator returning floats in [0,1).
type Source func() float64

// ErrEmptyCandidates indicates a draw was requested from an explicitly empty
// candidate set where the contract requires a non-empty result. This is a
// caller-side contract violation (a logic bug in the definition tables), not
// a recoverable runtime condition.
var ErrEmptyCandidates = errors.New("draw from empty candidate set")

// ErrNilSource indicates an engine operation was invoked without a random
// source. Sources are always threaded explicitly; there is no ambient
// fallback inside the engine.
var ErrNilSource = errors.New("nil random source")

// mulberryIncrement is the additive state constant of Mulberry32.
const mulberryIncrement uint32 = 0x6D2B79F5

// NewSeeded returns a deterministic Source for the given seed.
//
// Description:
//
//	Identical seeds produce identical infinite sequences. The generator is
//	a pure function of seed: no time, no goroutine identity, no platform
//	word size leaks into the output.
//
// Inputs:
//
//	seed - 32-bit seed. Zero is a valid seed.
//
// Outputs:
//
//	Source - the seeded generator.
func NewSeeded(seed uint32) Source {
	state := seed
	return func() float64 {
		state += mulberryIncrement
		t := state
		t = (t ^ (t >> 15)) * (t | 1)
		t ^= t + (t^(t>>7))*(t|61)
		t ^= t >> 14
		return float64(t) / 4294967296.0
	}
}

// NewDefault returns a non-reproducible Source.
//
// Intended for outermost call sites only (the CLI when no --seed is given).
// Engine-internal code must never construct its own default source.
func NewDefault() Source {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return r.Float64
}

// Tap wraps a Source so every emitted value is also passed to observe.
//
// The wrapper is a pure pass-through: the draw sequence seen by the caller
// is bit-identical with or without the tap. The trace recorder uses this to
// capture raw rolls without perturbing selection results.
func Tap(src Source, observe func(float64)) Source {
	return func() float64 {
		v := src()
		observe(v)
		return v
	}
}
