package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/flow"
	"github.com/aretw0/flow/pkg/adapters/lifecycle"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Merge journal edits made in other editors as they happen",
	Long: `Watch the journal directory of the target graph and merge every edited
file into the graph until interrupted. Files changed while nobody was watching
are merged on start.`,
	Args: cobra.NoArgs,
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := s.Watch(ctx, flow.WatchOptions{
			Debounce: watchDebounce,
			Reindex:  true,
			Lock:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}

		out := cmd.OutOrStdout()
		if !structured() && !quiet {
			fmt.Fprintf(out, "Watching %s %s\n", styleTitle.Render(s.Name()), styleMuted.Render("(Ctrl+C to stop)"))
		}

		src := lifecycle.NewSource(events)
		if err := src.Start(ctx); err != nil {
			return err
		}

		jsonEnc := json.NewEncoder(out)
		for ev := range src.Events() {
			e, ok := ev.(flow.Event)
			if !ok {
				continue
			}
			switch {
			case jsonOutput:
				if err := jsonEnc.Encode(e); err != nil {
					return err
				}
			case yamlOutput:
				data, err := yaml.Marshal([]flow.Event{e})
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(data))
			default:
				success(out, "%s %s", e.ID, styleMuted.Render(string(e.Type)))
			}
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 100*time.Millisecond, "Quiet period before an edited file is merged")
	rootCmd.AddCommand(watchCmd)
}
