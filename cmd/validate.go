package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/fxwatch/internal/config"
	"github.com/papapumpkin/fxwatch/internal/fxc"
	"github.com/papapumpkin/fxwatch/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the compiler and shader directory are usable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		printer := ui.New(cfg.Verbose)

		var problems []string
		if err := fxc.NewInvoker(cfg.CompilerPath, cfg.CompilerArgs, cfg.Verbose).Validate(); err != nil {
			problems = append(problems, err.Error())
		}

		if info, err := os.Stat(cfg.ShaderDir); err != nil {
			problems = append(problems, fmt.Sprintf("shader dir: %v", err))
		} else if !info.IsDir() {
			problems = append(problems, fmt.Sprintf("shader dir %s is not a directory", cfg.ShaderDir))
		}

		if _, err := filepath.Match(cfg.SourceGlob, "x.hlsl"); err != nil {
			problems = append(problems, fmt.Sprintf("source glob %q: %v", cfg.SourceGlob, err))
		}

		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			problems = append(problems, fmt.Sprintf("out dir: %v", err))
		}

		printer.ValidateResult(problems)
		if len(problems) > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
