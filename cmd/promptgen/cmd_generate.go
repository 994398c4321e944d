// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/blend"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/rng"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/selection"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/tables"
	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/tracing"
)

var (
	flagGenres    []string
	flagSeed      uint32
	flagSeeded    bool
	flagMax       int
	flagMustUse   []string
	flagTracePath string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a reproducible instrument selection",
	Example: `  promptgen generate --genres jazz
  promptgen generate --genres "drum and bass,synthwave" --seed 42 --trace run.json
  promptgen generate --genres jazz --must-use "upright bass" --max 4`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVarP(&flagGenres, "genres", "g", nil, "genres to blend (required)")
	generateCmd.Flags().Uint32Var(&flagSeed, "seed", 0, "seed for reproducible output")
	generateCmd.Flags().IntVar(&flagMax, "max", 0, "override the per-genre instrument budget")
	generateCmd.Flags().StringSliceVar(&flagMustUse, "must-use", nil, "instruments that must appear, budget permitting")
	generateCmd.Flags().StringVar(&flagTracePath, "trace", "", "write the finalized decision trace to this JSON file")
	_ = generateCmd.MarkFlagRequired("genres")
	rootCmd.AddCommand(generateCmd)
}

// result is the printable outcome of one generate run.
type result struct {
	Genres        []string
	Instruments   []string
	TimeSignature string
	Articulation  string
	RunID         string
	Seeded        bool
	Seed          uint32
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	flagSeeded = cmd.Flags().Changed("seed")

	lib, err := tables.Load()
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	logger.Debug("tables loaded", "genres", len(lib.Genres), "instruments", lib.Registry.Len())

	genres := make([]string, 0, len(flagGenres))
	for _, raw := range flagGenres {
		name := strings.TrimSpace(raw)
		if _, ok := lib.Genre(name); !ok {
			return fmt.Errorf("unknown genre %q (try: promptgen genres)", name)
		}
		genres = append(genres, strings.ToLower(name))
	}

	// The CLI is the outermost call site: the one place a default,
	// non-reproducible source is allowed.
	var source rng.Source
	seedInfo := &tracing.SeedInfo{Seeded: flagSeeded}
	if flagSeeded {
		source = rng.NewSeeded(flagSeed)
		seedInfo.Seed = flagSeed
		seedInfo.Label = "cli --seed flag"
	} else {
		source = rng.NewDefault()
		seedInfo.Label = "unseeded run"
	}

	runID := uuid.NewString()
	var recorder *tracing.Recorder
	if flagTracePath != "" {
		recorder = tracing.NewRecorder(tracing.Init{
			RunID: runID,
			Seed:  seedInfo,
			Metadata: map[string]string{
				"genres": strings.Join(genres, ","),
			},
		})
		recorder.RecordRunEvent("generate started")
	}

	res, err := generate(lib, genres, source, recorder)
	if err != nil {
		recorder.RecordError("generate", err)
		return err
	}
	res.RunID = runID
	res.Seeded = flagSeeded
	res.Seed = flagSeed

	fmt.Fprintln(cmd.OutOrStdout(), renderResult(res))

	if recorder != nil {
		recorder.RecordRunEvent("generate finished")
		if err := writeTrace(recorder.Finalize(), flagTracePath); err != nil {
			return err
		}
		logger.Info("trace written", "path", flagTracePath, "run_id", runID)
	}
	return nil
}

// generate runs the engine for the requested genres.
func generate(lib *tables.Library, genres []string, source rng.Source, recorder *tracing.Recorder) (result, error) {
	selector := selection.NewSelector(lib.Registry)

	var instruments []string
	seen := map[string]bool{}
	mustUse := flagMustUse
	for _, name := range genres {
		genre, _ := lib.Genre(name)

		opts := selection.Options{
			MustUse:  mustUse,
			Source:   source,
			Recorder: recorder,
		}
		if flagMax > 0 {
			max := flagMax
			opts.MaxTotal = &max
		}
		picked, err := selector.Select(genre.Definition, opts)
		if err != nil {
			return result{}, fmt.Errorf("select %s: %w", name, err)
		}
		// Must-use items only need to be satisfied once, by the first
		// genre walked.
		mustUse = nil

		for _, item := range picked {
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			instruments = append(instruments, item)
		}
	}

	blender, err := blend.New(source, blend.WithRecorder(recorder))
	if err != nil {
		return result{}, err
	}

	timeSig, ok := blender.One(genres, lib.TimeSignatureSources(), []string{"4/4"})
	if !ok {
		timeSig = "4/4"
	}

	var articulation string
	chance := tables.DefaultArticulationChance
	if rng.RollChance(&chance, source) {
		articulation, _ = blender.One(genres, lib.ArticulationSources(), nil)
	}

	return result{
		Genres:        genres,
		Instruments:   instruments,
		TimeSignature: timeSig,
		Articulation:  articulation,
	}, nil
}

// writeTrace exports a finalized run summary as indented JSON.
func writeTrace(sum tracing.RunSummary, path string) error {
	raw, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}
