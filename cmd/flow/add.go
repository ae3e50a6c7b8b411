package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/flow"
)

type addResult struct {
	Graph   string `json:"graph" yaml:"graph"`
	ID      string `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
}

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Append an entry to today's journal",
	Long: `Append "- <content>" to today's journal file of the target graph.
Edits made to the file by hand are merged before the entry is added.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		if strings.TrimSpace(content) == "" {
			return fmt.Errorf("content must not be empty")
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}
		path, err := resolveGraph(reg)
		if err != nil {
			return err
		}

		now := time.Now()
		opts := append(sessionOptions(), flow.WithClock(func() time.Time { return now }))
		s, err := flow.AddToJournal(cmd.Context(), path, content, opts...)
		if err != nil {
			return fmt.Errorf("failed to add entry: %w", err)
		}

		res := addResult{Graph: s.Name(), ID: s.JournalID(now), Content: content}
		return render(cmd.OutOrStdout(), res, func(w io.Writer) {
			success(w, "Added to %s %s", styleTitle.Render(res.Graph), styleMuted.Render(res.ID))
		})
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
