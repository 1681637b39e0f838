package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "fxwatch",
	Short: "Incremental HLSL shader builder",
	Long: `fxwatch watches a directory of HLSL shaders, recompiles the entry points whose
sources or includes changed, and generates C++ headers mirroring each shader's
constant buffers. Run without a subcommand it behaves like "fxwatch watch".`,
	SilenceUsage: true,
	RunE:         runWatch,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .fxwatch.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("shader-dir", "", "directory containing shader sources")
	pf.String("out-dir", "", "directory for compiled outputs and headers")
	pf.String("compiler", "", "path to the fxc-compatible compiler")
	pf.String("variants", "", "variants to build: both, optimized or debug")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("shader_dir", pf.Lookup("shader-dir"))
	_ = viper.BindPFlag("out_dir", pf.Lookup("out-dir"))
	_ = viper.BindPFlag("compiler_path", pf.Lookup("compiler"))
	_ = viper.BindPFlag("variants", pf.Lookup("variants"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".fxwatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("FXWATCH")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
