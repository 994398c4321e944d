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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/tables"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <token>",
	Short: "Resolve an instrument alias to its canonical name",
	Example: `  promptgen resolve scraper
  promptgen resolve "electric piano"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := tables.Load()
		if err != nil {
			return fmt.Errorf("load tables: %w", err)
		}

		token := args[0]
		canonical, ok := lib.Registry.Canonical(token)
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: not found\n", token)
			return nil
		}
		category, _ := lib.Registry.Category(token)
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", token, canonical, category)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
