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
	"fmt"
	"regexp"
)

// Text bounds applied to trace fields before storage.
const (
	// MaxBranchLen bounds the branch-taken label.
	MaxBranchLen = 240

	// MaxWhyLen bounds the free-text rationale.
	MaxWhyLen = 500

	// MaxPreviewItems bounds the candidate preview length.
	MaxPreviewItems = 8

	// MaxPreviewItemLen bounds each previewed candidate string.
	MaxPreviewItemLen = 64
)

// truncationMarker is appended whenever a field is cut.
const truncationMarker = "…[truncated]"

// credentialPattern pairs a secret type with its detection regex.
type credentialPattern struct {
	kind    string
	pattern *regexp.Regexp
}

// credentialPatterns covers the credential shapes that could plausibly leak
// into a trace through metadata, rationale text, or candidate strings.
// Patterns are ordered from most to least specific.
var credentialPatterns = []credentialPattern{
	{"openai_key", regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{16,}\b`)},
	{"aws_key", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"github_token", regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{30,}\b`)},
	{"bearer_token", regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{16,}=*`)},
	{"private_key", regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`)},
	{"assignment", regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|password|passwd)\s*[:=]\s*['"]?[^\s'"]{8,}['"]?`)},
}

// Scrub replaces credential-shaped substrings with a typed redaction
// marker. The output is always safe to export; Scrub never fails.
func Scrub(s string) string {
	for _, cp := range credentialPatterns {
		if cp.pattern.MatchString(s) {
			s = cp.pattern.ReplaceAllString(s, fmt.Sprintf("[redacted:%s]", cp.kind))
		}
	}
	return s
}

// bound scrubs then truncates a text field to max runes, appending the
// visible truncation marker when anything was cut.
func bound(s string, max int) string {
	s = Scrub(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + truncationMarker
}

// boundPreview bounds a candidate preview: at most MaxPreviewItems entries,
// each scrubbed and capped at MaxPreviewItemLen runes. The input slice is
// never mutated.
func boundPreview(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	n := len(items)
	if n > MaxPreviewItems {
		n = MaxPreviewItems
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = bound(items[i], MaxPreviewItemLen)
	}
	return out
}
