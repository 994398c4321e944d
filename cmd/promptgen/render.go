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
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Theme colors shared by all promptgen output.
var (
	colorTitle = lipgloss.Color("#2CD7C7") // bright teal
	colorLabel = lipgloss.Color("#20B9B4") // primary teal
	colorMuted = lipgloss.Color("#2C4A54") // slate
)

var styles = struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Muted lipgloss.Style
}{
	Title: lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
	Label: lipgloss.NewStyle().Foreground(colorLabel),
	Muted: lipgloss.NewStyle().Foreground(colorMuted),
}

// colorEnabled reports whether stdout is an interactive terminal.
// Piped or redirected output stays plain so it is easy to consume
// from scripts.
func colorEnabled() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func styleTitle(s string) string {
	if !colorEnabled() {
		return s
	}
	return styles.Title.Render(s)
}

func styleLabel(s string) string {
	if !colorEnabled() {
		return s
	}
	return styles.Label.Render(s)
}

func styleMuted(s string) string {
	if !colorEnabled() {
		return s
	}
	return styles.Muted.Render(s)
}

// renderResult formats one generate run for the terminal.
func renderResult(res result) string {
	var b strings.Builder

	b.WriteString(styleTitle(strings.Join(res.Genres, " x ")))
	b.WriteString("\n")

	b.WriteString(styleLabel("instruments"))
	b.WriteString(": ")
	b.WriteString(strings.Join(res.Instruments, ", "))
	b.WriteString("\n")

	b.WriteString(styleLabel("time signature"))
	b.WriteString(": ")
	b.WriteString(res.TimeSignature)
	b.WriteString("\n")

	if res.Articulation != "" {
		b.WriteString(styleLabel("articulation"))
		b.WriteString(": ")
		b.WriteString(res.Articulation)
		b.WriteString("\n")
	}

	seed := "default source"
	if res.Seeded {
		seed = fmt.Sprintf("seed %d", res.Seed)
	}
	b.WriteString(styleMuted(fmt.Sprintf("run %s (%s)", res.RunID, seed)))

	return b.String()
}
