// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selection implements the constrained pool selector: quota- and
// exclusion-aware sampling of unique items from a genre definition's ordered
// pools.
package selection

import (
	"fmt"
	"strings"
)

// PickRange is a per-pool quota: the number of items a pool contributes is
// drawn inclusively between Min and Max, then clamped to the remaining
// budget.
type PickRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Pool is a named bucket of raw candidate strings. Items are resolved
// through the registry before they count toward anything.
type Pool struct {
	// Pick is the quota range for this pool.
	Pick PickRange `json:"pick"`

	// Chance gates the whole pool. Nil means always included; otherwise a
	// single roll against the probability decides whether the pool
	// contributes at all.
	Chance *float64 `json:"chance,omitempty"`

	// Items are the raw candidates, in table order.
	Items []string `json:"items"`
}

// ExclusionRule is an unordered pair of case-insensitive substrings. Two
// items conflict when one contains A and the other contains B (either way
// around). Symmetric by construction.
type ExclusionRule struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Conflicts reports whether two already-normalized items violate this rule.
func (r ExclusionRule) Conflicts(x, y string) bool {
	lx, ly := strings.ToLower(x), strings.ToLower(y)
	la, lb := strings.ToLower(r.A), strings.ToLower(r.B)
	if strings.Contains(lx, la) && strings.Contains(ly, lb) {
		return true
	}
	return strings.Contains(lx, lb) && strings.Contains(ly, la)
}

// Definition describes one genre/category's selection space.
type Definition struct {
	// Name identifies the definition ("drum and bass").
	Name string `json:"name"`

	// Pools maps pool name to its contents.
	Pools map[string]Pool `json:"pools"`

	// PoolOrder is the processing order. It must reference only keys
	// present in Pools.
	PoolOrder []string `json:"pool_order"`

	// MaxTotal is the selection budget. Must be >= 0.
	MaxTotal int `json:"max_total"`

	// Exclusions are the pairwise conflict rules for this definition.
	Exclusions []ExclusionRule `json:"exclusions,omitempty"`
}

// Validate checks the definition's structural invariants.
//
// The static data provider validates tables at load time; Validate is the
// reusable half of that boundary check.
func (d Definition) Validate() error {
	if d.MaxTotal < 0 {
		return fmt.Errorf("definition %q: max_total must be >= 0, got %d", d.Name, d.MaxTotal)
	}
	for _, name := range d.PoolOrder {
		pool, ok := d.Pools[name]
		if !ok {
			return fmt.Errorf("definition %q: pool_order references unknown pool %q", d.Name, name)
		}
		if pool.Pick.Min < 0 {
			return fmt.Errorf("definition %q: pool %q: pick.min must be >= 0, got %d", d.Name, name, pool.Pick.Min)
		}
		if pool.Pick.Max < pool.Pick.Min {
			return fmt.Errorf("definition %q: pool %q: pick.max %d below pick.min %d", d.Name, name, pool.Pick.Max, pool.Pick.Min)
		}
		if pool.Chance != nil && (*pool.Chance < 0 || *pool.Chance > 1) {
			return fmt.Errorf("definition %q: pool %q: chance must be in [0,1], got %v", d.Name, name, *pool.Chance)
		}
	}
	return nil
}

// conflictsWithAny reports whether item violates any rule against any of
// the already-chosen items.
func conflictsWithAny(item string, chosen []string, rules []ExclusionRule) bool {
	for _, other := range chosen {
		for _, rule := range rules {
			if rule.Conflicts(item, other) {
				return true
			}
		}
	}
	return false
}
