package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild shaders whenever their sources or includes change",
	Long: `Runs a build pass, then watches the shader directory and the directories of
every include and runs another pass after each change. Shaders that fail to
compile are not retried until one of their inputs changes again.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	s, err := newSession(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.compiler.Validate(); err != nil {
		s.printer.Warn(fmt.Sprintf("%v; compiles will fail until it is available", err))
	}

	ctx, cancel := setupSignalContext(s.printer)
	defer cancel()

	s.printer.Banner(s.cfg.ShaderDir, s.cfg.OutDir)
	return s.loop.Run(ctx)
}
