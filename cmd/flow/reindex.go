package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/flow"
)

type reindexResult struct {
	Path    string   `json:"path" yaml:"path"`
	Changed []string `json:"changed" yaml:"changed"`
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Merge every journal file on disk into the graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		path, err := resolveGraph(reg)
		if err != nil {
			return err
		}

		changed, err := flow.Reindex(cmd.Context(), path, sessionOptions()...)
		if err != nil {
			return err
		}
		if changed == nil {
			changed = []string{}
		}

		res := reindexResult{Path: path, Changed: changed}
		return render(cmd.OutOrStdout(), res, func(w io.Writer) {
			if len(res.Changed) == 0 {
				success(w, "Journal is up to date")
				return
			}
			for _, id := range res.Changed {
				success(w, "Merged %s", id)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
