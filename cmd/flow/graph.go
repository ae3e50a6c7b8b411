package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/flow"
	"github.com/aretw0/flow/pkg/registry"
)

var errNoGraph = errors.New("no graph selected: run 'flow init' or 'flow open', or pass --graph")

func openRegistry() (*registry.Registry, error) {
	path, err := registry.DefaultPath()
	if err != nil {
		return nil, err
	}
	slog.Debug("loading registry", "path", path)
	return registry.Load(path)
}

// resolveGraph returns the directory of the graph a command targets: the
// --graph flag (name or path), then the active graph, then the graph
// enclosing the working directory.
func resolveGraph(reg *registry.Registry) (string, error) {
	if graphFlag != "" {
		if entry, ok := reg.Lookup(graphFlag); ok {
			return entry.Path, nil
		}
		if flow.Exists(graphFlag) {
			return filepath.Abs(graphFlag)
		}
		return "", fmt.Errorf("%w: %s", registry.ErrGraphNotFound, graphFlag)
	}

	if entry, ok := reg.Active(); ok {
		return entry.Path, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := flow.FindRoot(wd); err == nil {
		return root, nil
	}
	return "", errNoGraph
}

func sessionOptions() []flow.Option {
	return []flow.Option{flow.WithLogger(slog.Default())}
}
