package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/flow"
	"github.com/aretw0/flow/pkg/adapters/fs"
	"github.com/aretw0/flow/pkg/core"
)

var initName string

type initResult struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path" yaml:"path"`
	Active bool   `json:"active" yaml:"active"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a new graph and register it",
	Long: `Create a new graph in the given directory (the current one by default),
register it under its name and make it the active graph.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		switch {
		case len(args) == 1:
			path = args[0]
		case interactive():
			p, err := promptPath("Where should the graph live?", ".")
			if err != nil {
				return err
			}
			path = p
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		if flow.Exists(abs) {
			return fmt.Errorf("%w: %s", core.ErrAlreadyExists, abs)
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}

		name := initName
		if name == "" {
			name = fs.DefaultNameFor(abs)
		}
		if entry, ok := reg.Lookup(name); ok && entry.Name == name {
			return fmt.Errorf("graph name %q is already registered for %s, choose another with --name", name, entry.Path)
		}

		s, err := flow.Init(abs, append(sessionOptions(), flow.WithName(name))...)
		if err != nil {
			return fmt.Errorf("failed to initialize graph: %w", err)
		}

		if err := reg.Add(s.Name(), s.Path()); err != nil {
			return err
		}
		if err := reg.SetActive(s.Name()); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}

		res := initResult{Name: s.Name(), Path: s.Path(), Active: true}
		return render(cmd.OutOrStdout(), res, func(w io.Writer) {
			success(w, "Initialized graph %s in %s", styleTitle.Render(res.Name), res.Path)
		})
	},
}

func init() {
	initCmd.Flags().StringVarP(&initName, "name", "n", "", "Graph name (defaults to the directory name)")
	rootCmd.AddCommand(initCmd)
}
