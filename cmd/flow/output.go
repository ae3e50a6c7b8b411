package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	colorAccent  = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleSuccess = lipgloss.NewStyle().Foreground(colorAccent)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleActive  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

// structured reports whether results are printed as data rather than text.
func structured() bool {
	return jsonOutput || yamlOutput
}

// render prints v as JSON or YAML when requested, otherwise calls text.
func render(w io.Writer, v any, text func(w io.Writer)) error {
	switch {
	case jsonOutput:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case yamlOutput:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	default:
		text(w)
	}
	return nil
}

func success(w io.Writer, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintln(w, styleSuccess.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleWarning.Render("!")+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, styleError.Render("error:")+" "+err.Error())
}
