package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/aretw0/flow/pkg/registry"
)

// interactive reports whether prompts may be shown.
func interactive() bool {
	if structured() {
		return false
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func promptPath(title, fallback string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		Placeholder(fallback).
		Value(&value).
		Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	if value == "" {
		value = fallback
	}
	return value, nil
}

func promptGraph(entries []registry.Entry) (string, error) {
	options := make([]huh.Option[string], 0, len(entries))
	for _, e := range entries {
		label := e.Name + "  " + styleMuted.Render(e.Path)
		if e.Active {
			label += " " + styleActive.Render("(active)")
		}
		options = append(options, huh.NewOption(label, e.Name))
	}

	var choice string
	err := huh.NewSelect[string]().
		Title("Select a graph").
		Options(options...).
		Value(&choice).
		Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return choice, nil
}
