// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tables is the static data provider: it ships the declarative
// instrument and genre tables as embedded YAML and loads them through a
// typed, schema-validated boundary.
//
// Loading happens once at process start. Everything the loader returns is
// immutable afterwards; the engine packages only ever read it.
package tables

import (
	"fmt"

	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/registry"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/selection"
)

// DefaultArticulationChance is the probability that a generated prompt
// carries an articulation descriptor at all. Hand-tuned in the original
// engine; keep it a named, overridable constant rather than re-deriving.
const DefaultArticulationChance = 0.40

// instrumentsFile is the YAML shape of data/instruments.yaml.
type instrumentsFile struct {
	Instruments []instrumentRow `yaml:"instruments" validate:"required,min=1,dive"`
}

type instrumentRow struct {
	Canonical string   `yaml:"canonical" validate:"required"`
	Category  string   `yaml:"category" validate:"required,oneof=drums percussion bass keys synths guitars strings winds brass vocals fx"`
	Aliases   []string `yaml:"aliases"`
}

// genresFile is the YAML shape of data/genres.yaml.
type genresFile struct {
	Genres []genreRow `yaml:"genres" validate:"required,min=1,dive"`
}

type genreRow struct {
	Name           string             `yaml:"name" validate:"required"`
	MaxTotal       int                `yaml:"max_total" validate:"gte=0"`
	PoolOrder      []string           `yaml:"pool_order" validate:"required,min=1"`
	Pools          map[string]poolRow `yaml:"pools" validate:"required,min=1,dive"`
	Exclusions     [][]string         `yaml:"exclusions" validate:"omitempty,dive,len=2"`
	TimeSignatures []string           `yaml:"time_signatures"`
	Articulations  []string           `yaml:"articulations"`
}

type poolRow struct {
	Pick   pickRow  `yaml:"pick"`
	Chance *float64 `yaml:"chance" validate:"omitempty,gte=0,lte=1"`
	Items  []string `yaml:"items" validate:"required,min=1"`
}

type pickRow struct {
	Min int `yaml:"min" validate:"gte=0"`
	Max int `yaml:"max" validate:"gtefield=Min"`
}

// Genre bundles a selection definition with its blendable attributes.
type Genre struct {
	// Definition drives the constrained pool selector.
	Definition selection.Definition

	// TimeSignatures are this genre's candidate time signatures, blended
	// across genres when several are generated at once.
	TimeSignatures []string

	// Articulations are this genre's articulation descriptors.
	Articulations []string
}

// Library is the loaded, validated data set.
type Library struct {
	// Registry is the instrument alias table.
	Registry *registry.Registry

	// Genres maps lowercase genre name to its data.
	Genres map[string]Genre

	// GenreOrder preserves table order for listings.
	GenreOrder []string
}

// Genre looks a genre up case-insensitively.
func (l *Library) Genre(name string) (Genre, bool) {
	g, ok := l.Genres[lower(name)]
	return g, ok
}

// TimeSignatureSources returns the per-genre time signature lists keyed the
// way the blender expects.
func (l *Library) TimeSignatureSources() map[string][]string {
	out := make(map[string][]string, len(l.Genres))
	for name, g := range l.Genres {
		out[name] = g.TimeSignatures
	}
	return out
}

// ArticulationSources returns the per-genre articulation lists keyed the
// way the blender expects.
func (l *Library) ArticulationSources() map[string][]string {
	out := make(map[string][]string, len(l.Genres))
	for name, g := range l.Genres {
		out[name] = g.Articulations
	}
	return out
}

// LoadErrorKind enumerates the ways loading can fail.
type LoadErrorKind string

const (
	// KindParse means the YAML did not decode.
	KindParse LoadErrorKind = "parse"

	// KindSchema means a decoded value violated its structural schema.
	KindSchema LoadErrorKind = "schema"

	// KindRegistryConflict means the instrument table violated the
	// canonical/alias uniqueness invariant.
	KindRegistryConflict LoadErrorKind = "registry_conflict"

	// KindReference means a pool_order entry referenced a missing pool or
	// a definition invariant failed.
	KindReference LoadErrorKind = "reference"
)

// LoadError is the typed boundary failure for table loading. Callers match
// on Kind rather than probing error text.
type LoadError struct {
	Kind   LoadErrorKind
	Path   string
	Detail string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("tables: %s: %s error: %s", e.Path, e.Kind, e.Detail)
	}
	return fmt.Sprintf("tables: %s: %s error: %v", e.Path, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
