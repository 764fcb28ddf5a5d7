package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/flatpack/internal/config"
	"github.com/harrison/flatpack/internal/history"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded flattening runs",
		Long: `List runs recorded in the history database, newest first.

Runs are recorded when history is enabled in .flatpack/config.yaml or
the run command is invoked with --record.`,
		Args:         cobra.NoArgs,
		RunE:         historyListCommand,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("db", "", "Path to the history database (default: from config)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")

	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

// newHistoryClearCommand creates the history clear subcommand.
func newHistoryClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d recorded run(s).\n", n)
			return nil
		},
		SilenceUsage: true,
	}
}

// historyListCommand lists recorded runs.
func historyListCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	renderRuns(cmd.OutOrStdout(), runs)
	return nil
}

// openHistoryStore resolves the database path (flag, then config) and
// opens the store.
func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		cfg, err := config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		dbPath = cfg.History.DBPath
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

// renderRuns prints one block per recorded run.
func renderRuns(out io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintf(out, "No recorded runs.\n")
		return
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s\n", run.StartedAt.Local().Format(time.DateTime), run.ID)
		fmt.Fprintf(out, "  %s -> %s\n", run.InputDir, run.OutputDir)
		fmt.Fprintf(out, "  processed %d (converted %d), ignored %d, errors %d",
			run.Processed, run.Converted, run.Ignored, run.Errors)
		if run.Collisions > 0 {
			fmt.Fprintf(out, ", collisions %d", run.Collisions)
		}
		fmt.Fprintf(out, ", %.2f MB in %s\n",
			float64(run.TotalBytes)/(1024*1024), run.Duration.Round(time.Millisecond))
	}
}
