package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/fxwatch/internal/config"
	"github.com/papapumpkin/fxwatch/internal/history"
	"github.com/papapumpkin/fxwatch/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent compiles from the build history",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of compiles to show (0 for all)")
	historyCmd.Flags().Bool("failed", false, "only show failed compiles")
	historyCmd.Flags().Bool("output", false, "print compiler output of failed compiles")
	historyCmd.Flags().Bool("headers", false, "list generated headers instead of compiles")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.HistoryDB == "" {
		return errors.New("history is disabled (history_db is off)")
	}
	if _, err := os.Stat(cfg.HistoryDB); err != nil {
		return fmt.Errorf("no build history at %s: %w", cfg.HistoryDB, err)
	}

	ctx := context.Background()
	store, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	now := time.Now()

	if headers, _ := cmd.Flags().GetBool("headers"); headers {
		hs, err := store.Headers(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(w, ui.HeadersTable(hs, now))
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	failedOnly, _ := cmd.Flags().GetBool("failed")
	rows, err := store.Recent(ctx, limit, failedOnly)
	if err != nil {
		return err
	}
	fmt.Fprint(w, ui.HistoryTable(rows, now))

	if output, _ := cmd.Flags().GetBool("output"); output {
		fmt.Fprint(w, ui.FailureOutput(rows))
	}
	return nil
}
