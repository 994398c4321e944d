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
	"strings"

	"github.com/spf13/cobra"

	"github.com/ddv1982/suno-prompting-sub010/services/promptgen/tables"
)

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the loaded genre definitions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lib, err := tables.Load()
		if err != nil {
			return fmt.Errorf("load tables: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, name := range lib.GenreOrder {
			genre := lib.Genres[name]
			def := genre.Definition
			fmt.Fprintf(out, "%s (budget %d)\n", styleTitle(def.Name), def.MaxTotal)
			for _, poolName := range def.PoolOrder {
				pool := def.Pools[poolName]
				chance := ""
				if pool.Chance != nil {
					chance = fmt.Sprintf(", chance %.0f%%", *pool.Chance*100)
				}
				fmt.Fprintf(out, "  %s: pick %d-%d of %d%s\n",
					styleLabel(poolName), pool.Pick.Min, pool.Pick.Max, len(pool.Items), chance)
			}
			if len(def.Exclusions) > 0 {
				pairs := make([]string, 0, len(def.Exclusions))
				for _, rule := range def.Exclusions {
					pairs = append(pairs, fmt.Sprintf("%s/%s", rule.A, rule.B))
				}
				fmt.Fprintf(out, "  %s: %s\n", styleLabel("exclusions"), strings.Join(pairs, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genresCmd)
}
