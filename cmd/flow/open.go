package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/flow"
	"github.com/aretw0/flow/pkg/core"
	"github.com/aretw0/flow/pkg/registry"
)

type openResult struct {
	Name       string `json:"name" yaml:"name"`
	Path       string `json:"path" yaml:"path"`
	Registered bool   `json:"registered" yaml:"registered"`
}

var openCmd = &cobra.Command{
	Use:   "open [name|path]",
	Short: "Make a graph the active one",
	Long: `Make a registered graph the active one. A path to an unregistered graph
registers it first. Without arguments, an interactive picker is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		var target string
		switch {
		case len(args) == 1:
			target = args[0]
		case reg.Len() == 0:
			return fmt.Errorf("no graphs registered: run 'flow init' or 'flow open <path>'")
		case interactive():
			target, err = promptGraph(reg.All())
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("specify a graph name or path")
		}

		res, err := activate(reg, target)
		if err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), res, func(w io.Writer) {
			if res.Registered {
				success(w, "Registered graph %s (%s)", styleTitle.Render(res.Name), res.Path)
			}
			success(w, "Active graph is now %s", styleTitle.Render(res.Name))
		})
	},
}

// activate sets target active, registering it when it is an unknown graph path.
func activate(reg *registry.Registry, target string) (openResult, error) {
	if entry, ok := reg.Lookup(target); ok {
		if err := reg.SetActive(entry.Name); err != nil {
			return openResult{}, err
		}
		return openResult{Name: entry.Name, Path: entry.Path}, nil
	}

	if !flow.Exists(target) {
		return openResult{}, fmt.Errorf("%w: %s", core.ErrNotFound, target)
	}
	s, err := flow.Load(target, sessionOptions()...)
	if err != nil {
		return openResult{}, err
	}

	name := s.Name()
	if entry, ok := reg.Lookup(name); ok && entry.Name == name {
		return openResult{}, fmt.Errorf("graph name %q is already registered for %s", name, entry.Path)
	}
	if err := reg.Add(name, s.Path()); err != nil {
		return openResult{}, err
	}
	if err := reg.SetActive(name); err != nil {
		return openResult{}, err
	}
	entry, _ := reg.Lookup(name)
	return openResult{Name: name, Path: entry.Path, Registered: true}, nil
}

func init() {
	rootCmd.AddCommand(openCmd)
}
