// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry resolves free-form instrument aliases to canonical names.
//
// The registry is the normalization layer everything above it depends on:
// pools hold raw candidate strings, and the selector runs each one through
// Normalize before it can count toward budgets or exclusion checks.
//
// Resolution is case-insensitive exact match against an alias table built
// once at startup. There is no fuzzy matching. Unknown tokens degrade to a
// not-found result rather than an error; callers decide whether to keep the
// raw token or drop it.
//
// Thread Safety:
//
//	Registry is immutable after New returns and safe for concurrent reads.
package registry

import (
	"fmt"
	"strings"
)

// Category tags a registry entry with its instrument family.
type Category string

const (
	CategoryDrums      Category = "drums"
	CategoryPercussion Category = "percussion"
	CategoryBass       Category = "bass"
	CategoryKeys       Category = "keys"
	CategorySynths     Category = "synths"
	CategoryGuitars    Category = "guitars"
	CategoryStrings    Category = "strings"
	CategoryWinds      Category = "winds"
	CategoryBrass      Category = "brass"
	CategoryVocals     Category = "vocals"
	CategoryFX         Category = "fx"
)

// Entry describes one canonical instrument and the aliases that resolve to
// it. The canonical name always acts as its own alias.
type Entry struct {
	// Canonical is the single authoritative name for this instrument.
	Canonical string

	// Aliases are alternate spellings, in table order.
	Aliases []string

	// Category is the instrument family tag.
	Category Category
}

// ConflictKind enumerates the ways a registry table can violate uniqueness.
type ConflictKind string

const (
	// ConflictCanonical means two entries share a canonical name.
	ConflictCanonical ConflictKind = "canonical"

	// ConflictAlias means one alias maps to two different entries.
	ConflictAlias ConflictKind = "alias"
)

// ConflictError reports a uniqueness violation found while building the
// registry. Uniqueness is case-insensitive across all entries.
type ConflictError struct {
	Kind     ConflictKind
	Token    string
	Existing string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("registry %s conflict: %q already maps to %q", e.Kind, e.Token, e.Existing)
}

// resolved is the value side of the alias table.
type resolved struct {
	canonical string
	category  Category
}

// Registry is the immutable alias-to-canonical lookup table.
type Registry struct {
	byAlias map[string]resolved
	entries []Entry
}

// New builds a Registry from a static entry table.
//
// Description:
//
//	Construction is O(total aliases); lookups afterwards are O(1). The
//	integrity invariant is enforced here, not assumed: no two entries may
//	share a canonical name, and no alias (the canonical name included) may
//	map to more than one entry, case-insensitively.
//
// Outputs:
//
//	*Registry - the built table.
//	error - a *ConflictError describing the first violation found.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		byAlias: make(map[string]resolved),
		entries: entries,
	}
	seenCanonical := make(map[string]string, len(entries))

	for _, e := range entries {
		canonKey := strings.ToLower(e.Canonical)
		if prev, ok := seenCanonical[canonKey]; ok {
			return nil, &ConflictError{Kind: ConflictCanonical, Token: e.Canonical, Existing: prev}
		}
		seenCanonical[canonKey] = e.Canonical

		for _, alias := range append([]string{e.Canonical}, e.Aliases...) {
			key := strings.ToLower(alias)
			if prev, ok := r.byAlias[key]; ok {
				if prev.canonical == e.Canonical {
					// Same entry listing an alias twice is harmless.
					continue
				}
				return nil, &ConflictError{Kind: ConflictAlias, Token: alias, Existing: prev.canonical}
			}
			r.byAlias[key] = resolved{canonical: e.Canonical, category: e.Category}
		}
	}
	return r, nil
}

// Canonical resolves a token to its canonical name.
//
// The second return is false when the token is unknown.
func (r *Registry) Canonical(token string) (string, bool) {
	got, ok := r.byAlias[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return "", false
	}
	return got.canonical, true
}

// IsInstrument reports whether a token resolves to any registry entry.
func (r *Registry) IsInstrument(token string) bool {
	_, ok := r.byAlias[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// Category returns the instrument family for a token.
func (r *Registry) Category(token string) (Category, bool) {
	got, ok := r.byAlias[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return "", false
	}
	return got.category, true
}

// Normalize returns the canonical name when the token is known, and the raw
// token unchanged otherwise. This is the keep-the-raw-token degradation used
// by the selector: pools may legitimately hold descriptors that are not
// registry instruments.
func (r *Registry) Normalize(token string) string {
	if got, ok := r.Canonical(token); ok {
		return got
	}
	return token
}

// Entries returns the table the registry was built from.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Len returns the number of canonical entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
