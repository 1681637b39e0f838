package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/fxwatch/internal/shader"
)

// HistoryOff is the history_db value that disables the build history store.
const HistoryOff = "off"

// ErrInvalidVariants is returned when the variants key names an unknown policy.
var ErrInvalidVariants = errors.New("invalid variants policy")

// Config holds all runtime configuration for an fxwatch session.
// Values are populated from .fxwatch.yaml, FXWATCH_* env vars, and CLI flags.
type Config struct {
	ShaderDir       string        `mapstructure:"shader_dir"`
	OutDir          string        `mapstructure:"out_dir"`
	CompilerPath    string        `mapstructure:"compiler_path"`
	CompilerArgs    []string      `mapstructure:"compiler_args"`
	ShaderModel     string        `mapstructure:"shader_model"`
	SourceGlob      string        `mapstructure:"source_glob"`
	Variants        string        `mapstructure:"variants"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	Debounce        time.Duration `mapstructure:"debounce"`
	Namespace       string        `mapstructure:"namespace"`
	InnerNamespace  string        `mapstructure:"inner_namespace"`
	StateFile       string        `mapstructure:"state_file"`
	PersistFailures bool          `mapstructure:"persist_failures"`
	HistoryDB       string        `mapstructure:"history_db"`
	TelemetryFile   string        `mapstructure:"telemetry_file"`
	Verbose         bool          `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags. Paths derived from
// out_dir are filled in when left empty.
func Load() (Config, error) {
	viper.SetDefault("shader_dir", "shaders")
	viper.SetDefault("out_dir", filepath.Join("shaders", "out"))
	viper.SetDefault("compiler_path", "fxc")
	viper.SetDefault("compiler_args", []string{})
	viper.SetDefault("shader_model", shader.DefaultShaderModel)
	viper.SetDefault("source_glob", "*.hlsl")
	viper.SetDefault("variants", string(shader.PolicyBoth))
	viper.SetDefault("poll_interval", time.Second)
	viper.SetDefault("debounce", 100*time.Millisecond)
	viper.SetDefault("namespace", "tano")
	viper.SetDefault("inner_namespace", "cb")
	viper.SetDefault("state_file", "")
	viper.SetDefault("persist_failures", true)
	viper.SetDefault("history_db", "")
	viper.SetDefault("telemetry_file", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if cfg.StateFile == "" {
		cfg.StateFile = filepath.Join(cfg.OutDir, "fxwatch.state.toml")
	}
	switch strings.ToLower(cfg.HistoryDB) {
	case "":
		cfg.HistoryDB = filepath.Join(cfg.OutDir, "fxwatch.db")
	case HistoryOff:
		cfg.HistoryDB = ""
	}

	if _, err := cfg.Policy(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Policy returns the parsed variant policy.
func (c Config) Policy() (shader.Policy, error) {
	p, ok := shader.ParsePolicy(c.Variants)
	if !ok {
		return "", fmt.Errorf("config: %w: %q (want both, optimized or debug)", ErrInvalidVariants, c.Variants)
	}
	return p, nil
}
