package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	quiet      bool
	jsonOutput bool
	yamlOutput bool
	graphFlag  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flow",
	Short: "A file-backed note graph with a mergeable daily journal",
	Long: `Flow keeps a graph of plain Markdown journal files in sync with a
replicated document store, so edits made in any editor are merged instead of
overwritten.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput && yamlOutput {
			return fmt.Errorf("--json and --yaml are mutually exclusive")
		}

		level := slog.LevelInfo
		switch {
		case verbose:
			level = slog.LevelDebug
		case quiet:
			level = slog.LevelError
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors and requested data")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "Print results as YAML")
	rootCmd.PersistentFlags().StringVarP(&graphFlag, "graph", "g", "", "Graph name or path (defaults to the active graph)")
}
