// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tracing records every random branch the selection engine takes
// into a run-scoped, exportable decision log.
//
// A Recorder is created per top-level user action, attached optionally to
// engine calls, and finalized into an immutable RunSummary once the action
// completes. Recording is entirely optional: all methods are safe no-ops on
// a nil *Recorder, so call sites pay a single presence check and nothing
// else when tracing is off.
//
// Every text field stored in a trace is bounded (truncated with a visible
// marker) and scrubbed of credential-shaped substrings, so a finalized run
// is always safe to export or display.
package tracing

import "time"

// Kind identifies the kind of recorded event.
type Kind string

const (
	// KindRunEvent marks run lifecycle milestones.
	KindRunEvent Kind = "run_event"

	// KindDecision marks a random branch taken by the engine.
	KindDecision Kind = "decision"

	// KindLLMCall marks a language-model round trip made by the
	// orchestration layer above this engine.
	KindLLMCall Kind = "llm_call"

	// KindError marks a recorded failure.
	KindError Kind = "error"
)

// Method identifies how a traced selection was made.
type Method string

const (
	// MethodPick is a uniform single-item draw.
	MethodPick Method = "pick"

	// MethodShuffleSlice is a shuffle followed by a left-to-right take.
	MethodShuffleSlice Method = "shuffleSlice"

	// MethodWeightedChance is a biased draw between candidate pools.
	MethodWeightedChance Method = "weightedChance"

	// MethodIndex is a direct index draw.
	MethodIndex Method = "index"
)

// Selection describes the random draw behind a decision.
type Selection struct {
	// Method is how the choice was made.
	Method Method `json:"method"`

	// ChosenIndex is the index drawn, when the method has one.
	ChosenIndex *int `json:"chosen_index,omitempty"`

	// CandidatesCount is the full candidate set size.
	CandidatesCount int `json:"candidates_count"`

	// CandidatesPreview holds a bounded prefix of the candidate set.
	CandidatesPreview []string `json:"candidates_preview,omitempty"`

	// Rolls are the raw values consumed from the random source.
	Rolls []float64 `json:"rolls,omitempty"`
}

// Decision is one recorded random branch.
type Decision struct {
	// Domain names the engine area ("selection", "blend", ...).
	Domain string `json:"domain"`

	// Key identifies the specific decision site within the domain.
	Key string `json:"key"`

	// BranchTaken is a short label for the branch ("included pool drums").
	BranchTaken string `json:"branch_taken"`

	// Why is a free-text rationale.
	Why string `json:"why,omitempty"`

	// Selection carries draw details when the branch involved one.
	Selection *Selection `json:"selection,omitempty"`
}

// LLMCall describes one model round trip recorded by the orchestration
// layer. The engine itself never makes such calls.
type LLMCall struct {
	Provider        string `json:"provider"`
	Model           string `json:"model"`
	PromptPreview   string `json:"prompt_preview,omitempty"`
	ResponsePreview string `json:"response_preview,omitempty"`
	DurationMs      int64  `json:"duration_ms"`
}

// Event is one finalized log entry. Seq is monotonically increasing within
// a run; OffsetMs is milliseconds since the run started.
type Event struct {
	Seq       int       `json:"seq"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	OffsetMs  int64     `json:"offset_ms"`

	// Label is the run-event summary, set for KindRunEvent.
	Label string `json:"label,omitempty"`

	// Decision is set for KindDecision.
	Decision *Decision `json:"decision,omitempty"`

	// LLM is set for KindLLMCall.
	LLM *LLMCall `json:"llm,omitempty"`

	// Error is the recorded failure text, set for KindError.
	Error string `json:"error,omitempty"`

	// ErrorDomain names the area that failed, set for KindError.
	ErrorDomain string `json:"error_domain,omitempty"`
}

// SeedInfo records how the run's random source was constructed.
type SeedInfo struct {
	// Seeded is false when the run used a non-reproducible source.
	Seeded bool `json:"seeded"`

	// Seed is the 32-bit seed, meaningful only when Seeded is true.
	Seed uint32 `json:"seed,omitempty"`

	// Label is a human-readable note ("cli --seed flag").
	Label string `json:"label,omitempty"`
}

// RunSummary is the immutable result of finalizing a Recorder.
//
// The structure is self-contained and JSON-serializable; nothing in it
// references live engine state.
type RunSummary struct {
	RunID      string            `json:"run_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Seed       *SeedInfo         `json:"seed,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	DurationMs int64             `json:"duration_ms"`

	EventCount    int  `json:"event_count"`
	DecisionCount int  `json:"decision_count"`
	LLMCallCount  int  `json:"llm_call_count"`
	ErrorCount    int  `json:"error_count"`
	HadErrors     bool `json:"had_errors"`

	Events []Event `json:"events"`
}
