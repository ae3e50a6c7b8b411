package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/flow/pkg/registry"
)

type listResult struct {
	Active string           `json:"active,omitempty" yaml:"active,omitempty"`
	Graphs []registry.Entry `json:"graphs" yaml:"graphs"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered graphs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		res := listResult{Active: reg.ActiveName(), Graphs: reg.All()}
		return render(cmd.OutOrStdout(), res, func(w io.Writer) {
			if len(res.Graphs) == 0 {
				fmt.Fprintln(w, "No graphs registered. Run 'flow init' to create one.")
				return
			}
			for _, g := range res.Graphs {
				marker := " "
				name := g.Name
				if g.Active {
					marker = styleActive.Render("*")
					name = styleActive.Render(g.Name)
				}
				fmt.Fprintf(w, "%s %s  %s\n", marker, name, styleMuted.Render(g.Path))
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
