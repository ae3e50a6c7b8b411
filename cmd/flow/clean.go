package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/flow"
	"github.com/aretw0/flow/pkg/registry"
)

var cleanDryRun bool

type cleanResult struct {
	DryRun    bool             `json:"dry_run" yaml:"dry_run"`
	Removed   []registry.Entry `json:"removed" yaml:"removed"`
	Remaining int              `json:"remaining" yaml:"remaining"`
	Active    string           `json:"active,omitempty" yaml:"active,omitempty"`
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Unregister graphs whose directory is gone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		res := cleanResult{DryRun: cleanDryRun, Removed: []registry.Entry{}}
		for _, entry := range reg.All() {
			if !flow.Exists(entry.Path) {
				res.Removed = append(res.Removed, entry)
			}
		}

		// A dry run removes in memory only.
		for _, entry := range res.Removed {
			if err := reg.Remove(entry.Name); err != nil {
				return err
			}
		}
		if !cleanDryRun && len(res.Removed) > 0 {
			if err := reg.Save(); err != nil {
				return err
			}
		}

		res.Remaining = reg.Len()
		res.Active = reg.ActiveName()

		return render(cmd.OutOrStdout(), res, func(w io.Writer) {
			if len(res.Removed) == 0 {
				success(w, "All %d registered graphs are valid", res.Remaining)
				return
			}
			verb := "Removed"
			if cleanDryRun {
				verb = "Would remove"
			}
			for _, e := range res.Removed {
				warn(w, "%s %s %s", verb, styleTitle.Render(e.Name), styleMuted.Render(e.Path))
			}
			if !quiet {
				fmt.Fprintf(w, "%d graphs remain registered\n", res.Remaining)
			}
		})
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Only report what would be removed")
	rootCmd.AddCommand(cleanCmd)
}
