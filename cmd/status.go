package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/fxwatch/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show discovered shaders, stale outputs and recorded failures",
	Long:  "Scans the shader directory and reports what the next build pass would do, without compiling anything.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession(context.Background())
		if err != nil {
			return err
		}
		defer s.Close()

		report, err := s.loop.State.Rescan(s.cfg.ShaderDir, s.cfg.SourceGlob)
		if err != nil {
			return err
		}
		for path, warnings := range report.Warnings {
			for _, w := range warnings {
				s.printer.ScanWarning(path, w)
			}
		}
		for _, e := range report.Errors {
			s.printer.Warn(e.Error())
		}

		plans := s.loop.Orchestrator.Plan(s.loop.State)
		fmt.Fprint(cmd.OutOrStdout(), ui.StatusTable(plans, s.loop.State.Failures.Records(), time.Now()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
