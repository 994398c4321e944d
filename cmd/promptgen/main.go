// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command promptgen is the debug/exploration CLI for the constrained
// procedural selection engine: it loads the static tables, runs seeded or
// unseeded selections, and exports decision traces.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ddv1982/suno-prompting-sub010/pkg/logging"
)

var (
	logger *logging.Logger

	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "promptgen",
	Short: "Deterministic instrument and genre selection for music prompts",
	Long: `promptgen turns the declarative genre tables into concrete,
reproducible selections: instruments per genre, a blended time signature,
and an optional articulation. Give it a --seed to make a run repeatable,
and --trace to export every random decision the engine took.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Flag parse errors surface before OnInitialize runs.
		if logger == nil {
			logger = logging.Default()
		}
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		level := logging.LevelInfo
		if flagVerbose {
			level = logging.LevelDebug
		}
		l, err := logging.New(logging.Config{Level: level, Service: "promptgen"})
		if err != nil {
			l = logging.Default()
		}
		logger = l
	})
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}
