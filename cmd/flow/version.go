package main

import (
	"fmt"
	"io"

	"github.com/aretw0/flow"
	"github.com/spf13/cobra"
)

type versionResult struct {
	Version string `json:"version" yaml:"version"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return render(cmd.OutOrStdout(), versionResult{Version: flow.Version}, func(w io.Writer) {
			fmt.Fprintf(w, "flow version %s\n", flow.Version)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
