package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/flow"
	"github.com/aretw0/flow/pkg/adapters/fs"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the target graph",
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

		s, err := flow.Load(path, sessionOptions()...)
		if err != nil {
			return err
		}
		state, ok := s.State().(fs.SessionState)
		if !ok {
			return fmt.Errorf("unexpected state type %T", s.State())
		}

		return render(cmd.OutOrStdout(), state, func(w io.Writer) {
			fmt.Fprintf(w, "%s %s\n", styleTitle.Render(state.Name), styleMuted.Render("v"+state.Version))
			fmt.Fprintf(w, "  path:      %s\n", state.Path)
			fmt.Fprintf(w, "  journal:   %s\n", state.JournalDir)
			fmt.Fprintf(w, "  documents: %d\n", len(state.Documents))
			for _, id := range state.Documents {
				fmt.Fprintf(w, "    %s\n", styleMuted.Render(strings.TrimPrefix(id, state.JournalDir+"/")))
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
