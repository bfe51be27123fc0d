// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

// Package cli renders command results for the terminal.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/retr0h/osrun/internal/exec"
	"github.com/retr0h/osrun/internal/provider/command"
)

// Theme colors for terminal UI rendering.
var (
	Purple    = lipgloss.Color("99")
	Gray      = lipgloss.Color("245")
	LightGray = lipgloss.Color("241")
	White     = lipgloss.Color("15")
	Red       = lipgloss.Color("196")
	Teal      = lipgloss.Color("#06ffa5")
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	valueStyle = lipgloss.NewStyle().Foreground(Teal)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(Red)

	// DimStyle is a muted style for secondary text.
	DimStyle = lipgloss.NewStyle().Foreground(Gray)
)

// KVMinColWidth is the minimum visual width for each key-value column.
// A consistent minimum ensures columns align across consecutive PrintKV calls.
const KVMinColWidth = 20

// PrintKV prints labeled key-value pairs on a single indented line.
// Arguments alternate between labels and values: label1, val1, label2, val2, ...
func PrintKV(
	w io.Writer,
	pairs ...string,
) {
	if len(pairs)%2 != 0 || len(pairs) == 0 {
		return
	}

	rendered := make([]string, 0, len(pairs)/2)
	maxWidth := KVMinColWidth
	for i := 0; i < len(pairs); i += 2 {
		pair := labelStyle.Render(pairs[i]+":") + " " + valueStyle.Render(pairs[i+1])
		rendered = append(rendered, pair)
		if width := lipgloss.Width(pair); width > maxWidth {
			maxWidth = width
		}
	}

	var line strings.Builder
	line.WriteString("  ")
	for i, pair := range rendered {
		line.WriteString(pair)
		if i < len(rendered)-1 {
			line.WriteString(strings.Repeat(" ", maxWidth-lipgloss.Width(pair)+4))
		}
	}
	_, _ = fmt.Fprintln(w, line.String())
}

// PrintTable renders headers and rows as a bordered table with
// alternating row colors.
func PrintTable(
	w io.Writer,
	headers []string,
	rows [][]string,
) {
	var (
		headerStyle  = lipgloss.NewStyle().Foreground(White).Bold(true).Align(lipgloss.Center)
		cellStyle    = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
		oddRowStyle  = cellStyle.Foreground(Gray)
		evenRowStyle = cellStyle.Foreground(LightGray)
		borderStyle  = lipgloss.NewStyle().Foreground(Purple)
	)

	styledHeaders := make([]string, len(headers))
	for i, header := range headers {
		styledHeaders[i] = strings.ToUpper(header)
	}

	t := table.New().
		Border(lipgloss.ThickBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(
			row int,
			_ int,
		) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers(styledHeaders...).
		Rows(rows...)

	_, _ = fmt.Fprintln(w, t.String())
}

// PrintResult prints a summary of a finished command.
func PrintResult(
	w io.Writer,
	result *command.Result,
) {
	if result == nil {
		return
	}

	status := "ok"
	if !result.Succeeded {
		status = "failed"
	}

	exitCode := "-"
	if result.Signal == "" && result.ExitCode >= 0 {
		exitCode = strconv.Itoa(result.ExitCode)
	}

	PrintKV(w,
		"Status", status,
		"Exit code", exitCode,
		"Duration", fmt.Sprintf("%dms", result.DurationMs),
	)

	if result.Signal != "" {
		PrintKV(w, "Signal", result.Signal)
	}

	if result.Captured {
		PrintKV(w,
			"Stdout", FormatBytes(len(result.Stdout)),
			"Stderr", FormatBytes(len(result.Stderr)),
			"Binary", strconv.FormatBool(result.Binary),
		)
	}
}

// PrintError prints err. An *exec.ExecutionError is printed as its full
// report with the description highlighted.
func PrintError(
	w io.Writer,
	err error,
) {
	if err == nil {
		return
	}

	report := err.Error()

	var execErr *exec.ExecutionError
	if errors.As(err, &execErr) {
		report = execErr.Error()
	}

	// Lines are styled one at a time; lipgloss pads multi-line blocks.
	lines := strings.Split(report, "\n")
	_, _ = fmt.Fprintln(w, errorStyle.Render(lines[0]))
	for _, line := range lines[1:] {
		_, _ = fmt.Fprintln(w, DimStyle.Render(line))
	}
}

// FormatBytes formats a byte count as a human-readable string (e.g., "5.2 KB", "1.0 MB").
func FormatBytes(
	b int,
) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
