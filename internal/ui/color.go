// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui prints human-readable mcpify output.
//
// Status lines (success, warning, info) go to a configurable writer that
// defaults to stderr, so stdout stays free for JSON or YAML documents.
// Colors follow --no-color, NO_COLOR and TTY detection in fatih/color.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// InitColors disables colored output when noColor is set.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// SetOutput redirects status lines and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func printLine(c *color.Color, prefix, msg string) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintln(out, c.Sprint(prefix+msg))
}

// Success prints "✓ msg" in green.
func Success(msg string) { printLine(Green, "✓ ", msg) }

// Successf is Success with formatting.
func Successf(format string, args ...any) { Success(fmt.Sprintf(format, args...)) }

// Warning prints "⚠ msg" in yellow. The matcher's embedding fallback is
// reported through it.
func Warning(msg string) { printLine(Yellow, "⚠ ", msg) }

// Warningf is Warning with formatting.
func Warningf(format string, args ...any) { Warning(fmt.Sprintf(format, args...)) }

// Error prints "✗ msg" in red.
func Error(msg string) { printLine(Red, "✗ ", msg) }

// Errorf is Error with formatting.
func Errorf(format string, args ...any) { Error(fmt.Sprintf(format, args...)) }

// Info prints "ℹ msg" in cyan.
func Info(msg string) { printLine(Cyan, "ℹ ", msg) }

// Infof is Info with formatting.
func Infof(format string, args ...any) { Info(fmt.Sprintf(format, args...)) }

// Header writes a bold title underlined with '=' to w.
func Header(w io.Writer, text string) {
	_, _ = fmt.Fprintln(w, Bold.Sprint(text))
	_, _ = fmt.Fprintln(w, strings.Repeat("=", len([]rune(text))))
}

// SubHeader writes a bold title to w.
func SubHeader(w io.Writer, text string) {
	_, _ = fmt.Fprintln(w, Bold.Sprint(text))
}

// Label returns text in bold.
func Label(text string) string { return Bold.Sprint(text) }

// DimText returns text dimmed, for paths and other secondary details.
func DimText(text string) string { return Dim.Sprint(text) }

// CountText returns count in cyan.
func CountText(count int) string { return Cyan.Sprint(count) }

// ScoreText formats a relevance or confidence score with two decimals,
// green from 0.75, yellow from 0.5 and red below.
func ScoreText(score float64) string {
	s := fmt.Sprintf("%.2f", score)
	switch {
	case score >= 0.75:
		return Green.Sprint(s)
	case score >= 0.5:
		return Yellow.Sprint(s)
	}
	return Red.Sprint(s)
}
