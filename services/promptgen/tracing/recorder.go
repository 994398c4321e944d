// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracing

import (
	"sync"
	"time"
)

// Init carries the run identity a Recorder is created with.
type Init struct {
	// RunID identifies the run. The caller owns generation (uuid at the
	// CLI); the recorder treats it as opaque.
	RunID string

	// Metadata is free-form run context (genre names, CLI flags).
	Metadata map[string]string

	// Seed records how the run's random source was built.
	Seed *SeedInfo
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the wall clock. Tests use this to make timestamps and
// offsets exact.
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// Recorder accumulates events for one run.
//
// Description:
//
//	Events receive a monotonically increasing sequence id, a wall-clock
//	timestamp, and a millisecond offset from run start. Text fields are
//	scrubbed and bounded on the way in, so anything stored is already
//	export-safe.
//
// Thread Safety:
//
//	Recorder is safe for concurrent use. All methods, including Finalize,
//	are safe no-ops on a nil receiver.
type Recorder struct {
	mu    sync.Mutex
	clock func() time.Time

	runID    string
	metadata map[string]string
	seed     *SeedInfo
	start    time.Time

	events        []Event
	seq           int
	decisionCount int
	llmCallCount  int
	errorCount    int
}

// NewRecorder creates a Recorder for one run.
func NewRecorder(init Init, opts ...Option) *Recorder {
	r := &Recorder{
		clock:    time.Now,
		runID:    init.RunID,
		seed:     init.Seed,
		metadata: make(map[string]string, len(init.Metadata)),
	}
	for k, v := range init.Metadata {
		r.metadata[k] = Scrub(v)
	}
	for _, opt := range opts {
		opt(r)
	}
	r.start = r.clock()
	return r
}

// append stamps and stores one event under the lock.
func (r *Recorder) append(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Clock read happens under the lock so timestamps stay monotone with
	// sequence ids.
	now := r.clock()

	r.seq++
	e.Seq = r.seq
	e.Timestamp = now
	e.OffsetMs = now.Sub(r.start).Milliseconds()
	r.events = append(r.events, e)

	switch e.Kind {
	case KindDecision:
		r.decisionCount++
	case KindLLMCall:
		r.llmCallCount++
	case KindError:
		r.errorCount++
	}
}

// RecordRunEvent records a run lifecycle milestone.
func (r *Recorder) RecordRunEvent(label string) {
	if r == nil {
		return
	}
	r.append(Event{Kind: KindRunEvent, Label: bound(label, MaxBranchLen)})
}

// RecordDecision records one random branch taken by the engine.
//
// The decision arrives without id or timestamp; the recorder assigns both.
// Branch, rationale, and candidate preview are bounded and scrubbed.
func (r *Recorder) RecordDecision(d Decision) {
	if r == nil {
		return
	}
	d.BranchTaken = bound(d.BranchTaken, MaxBranchLen)
	d.Why = bound(d.Why, MaxWhyLen)
	if d.Selection != nil {
		sel := *d.Selection
		sel.CandidatesPreview = boundPreview(sel.CandidatesPreview)
		if sel.Rolls != nil {
			sel.Rolls = append([]float64(nil), sel.Rolls...)
		}
		d.Selection = &sel
	}

	r.append(Event{Kind: KindDecision, Decision: &d})
}

// RecordLLMCall records a model round trip made above the engine.
func (r *Recorder) RecordLLMCall(call LLMCall) {
	if r == nil {
		return
	}
	call.PromptPreview = bound(call.PromptPreview, MaxWhyLen)
	call.ResponsePreview = bound(call.ResponsePreview, MaxWhyLen)

	r.append(Event{Kind: KindLLMCall, LLM: &call})
}

// RecordError records a failure without interrupting the run.
func (r *Recorder) RecordError(domain string, err error) {
	if r == nil || err == nil {
		return
	}
	r.append(Event{
		Kind:        KindError,
		ErrorDomain: bound(domain, MaxBranchLen),
		Error:       bound(err.Error(), MaxWhyLen),
	})
}

// Finalize seals the run into an immutable RunSummary.
//
// Aggregates are maintained incrementally while recording, so Finalize does
// not re-scan the event list; it copies it once. A nil receiver returns a
// zero summary. The Recorder should be discarded afterwards.
func (r *Recorder) Finalize() RunSummary {
	if r == nil {
		return RunSummary{}
	}
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]Event, len(r.events))
	copy(events, r.events)

	metadata := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		metadata[k] = v
	}

	var seed *SeedInfo
	if r.seed != nil {
		s := *r.seed
		seed = &s
	}

	return RunSummary{
		RunID:         r.runID,
		Metadata:      metadata,
		Seed:          seed,
		StartedAt:     r.start,
		FinishedAt:    now,
		DurationMs:    now.Sub(r.start).Milliseconds(),
		EventCount:    len(events),
		DecisionCount: r.decisionCount,
		LLMCallCount:  r.llmCallCount,
		ErrorCount:    r.errorCount,
		HadErrors:     r.errorCount > 0,
		Events:        events,
	}
}
