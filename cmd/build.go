package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run a single build pass and exit",
	Long:  "Compiles every stale shader variant once. Exits non-zero if any compile failed.",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().Bool("force", false, "forget recorded failures and retry every failing shader")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	s, err := newSession(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	if force, _ := cmd.Flags().GetBool("force"); force {
		for _, r := range s.loop.State.Failures.Records() {
			s.loop.State.Failures.Clear(r.Shader)
		}
	}

	ctx, cancel := setupSignalContext(s.printer)
	defer cancel()

	sum, err := s.loop.Tick(ctx)
	if err != nil {
		return err
	}
	if !sum.OK() {
		return fmt.Errorf("%d compile(s) failed: %s", sum.Failed, strings.Join(sum.FailedShaders, ", "))
	}
	if sum.Compiled == 0 {
		s.printer.Info("everything up to date")
	}
	return nil
}
