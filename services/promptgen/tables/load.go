// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tables

import (
	_ "embed"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/registry"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/selection"
)

//go:embed data/instruments.yaml
var instrumentsYAML []byte

//go:embed data/genres.yaml
var genresYAML []byte

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Load builds the Library from the embedded tables.
func Load() (*Library, error) {
	return LoadFrom(instrumentsYAML, genresYAML)
}

// LoadFrom builds the Library from raw YAML.
//
// Description:
//
//	Decoding, schema validation, registry construction, and referential
//	checks happen in that order; the first failure wins and is reported
//	as a *LoadError with an enumerated Kind. There is no partial result.
//
// Outputs:
//
//	*Library - the immutable loaded data set.
//	error - a *LoadError on any failure.
func LoadFrom(instruments, genres []byte) (*Library, error) {
	validate := validator.New()

	var insFile instrumentsFile
	if err := yaml.Unmarshal(instruments, &insFile); err != nil {
		return nil, &LoadError{Kind: KindParse, Path: "instruments.yaml", Err: err}
	}
	if err := validate.Struct(insFile); err != nil {
		return nil, &LoadError{Kind: KindSchema, Path: "instruments.yaml", Err: err}
	}

	entries := make([]registry.Entry, 0, len(insFile.Instruments))
	for _, row := range insFile.Instruments {
		entries = append(entries, registry.Entry{
			Canonical: row.Canonical,
			Aliases:   row.Aliases,
			Category:  registry.Category(row.Category),
		})
	}
	reg, err := registry.New(entries)
	if err != nil {
		return nil, &LoadError{Kind: KindRegistryConflict, Path: "instruments.yaml", Err: err}
	}

	var genFile genresFile
	if err := yaml.Unmarshal(genres, &genFile); err != nil {
		return nil, &LoadError{Kind: KindParse, Path: "genres.yaml", Err: err}
	}
	if err := validate.Struct(genFile); err != nil {
		return nil, &LoadError{Kind: KindSchema, Path: "genres.yaml", Err: err}
	}

	lib := &Library{
		Registry: reg,
		Genres:   make(map[string]Genre, len(genFile.Genres)),
	}
	for _, row := range genFile.Genres {
		def := toDefinition(row)
		if err := def.Validate(); err != nil {
			return nil, &LoadError{Kind: KindReference, Path: "genres.yaml", Err: err}
		}
		key := lower(row.Name)
		if _, dup := lib.Genres[key]; dup {
			return nil, &LoadError{
				Kind:   KindReference,
				Path:   "genres.yaml",
				Detail: "duplicate genre name " + row.Name,
			}
		}
		lib.Genres[key] = Genre{
			Definition:     def,
			TimeSignatures: row.TimeSignatures,
			Articulations:  row.Articulations,
		}
		lib.GenreOrder = append(lib.GenreOrder, key)
	}
	return lib, nil
}

// toDefinition converts a decoded genre row into a selection definition.
func toDefinition(row genreRow) selection.Definition {
	pools := make(map[string]selection.Pool, len(row.Pools))
	for name, p := range row.Pools {
		pools[name] = selection.Pool{
			Pick:   selection.PickRange{Min: p.Pick.Min, Max: p.Pick.Max},
			Chance: p.Chance,
			Items:  p.Items,
		}
	}
	exclusions := make([]selection.ExclusionRule, 0, len(row.Exclusions))
	for _, pair := range row.Exclusions {
		exclusions = append(exclusions, selection.ExclusionRule{A: pair[0], B: pair[1]})
	}
	return selection.Definition{
		Name:       row.Name,
		Pools:      pools,
		PoolOrder:  row.PoolOrder,
		MaxTotal:   row.MaxTotal,
		Exclusions: exclusions,
	}
}
