package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/papapumpkin/fxwatch/internal/build"
	"github.com/papapumpkin/fxwatch/internal/cbuffer"
	"github.com/papapumpkin/fxwatch/internal/config"
	"github.com/papapumpkin/fxwatch/internal/failcache"
	"github.com/papapumpkin/fxwatch/internal/fxc"
	"github.com/papapumpkin/fxwatch/internal/history"
	"github.com/papapumpkin/fxwatch/internal/telemetry"
	"github.com/papapumpkin/fxwatch/internal/ui"
	"github.com/papapumpkin/fxwatch/internal/watch"
)

// session bundles everything a build-running command needs.
type session struct {
	cfg      config.Config
	printer  *ui.Printer
	compiler *fxc.Invoker
	loop     *watch.Loop
	store    *history.Store
	emitter  *telemetry.Emitter
}

// newSession loads config and wires the compiler, stores and loop together.
func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, printer: ui.New(cfg.Verbose)}

	failures := failcache.New()
	if cfg.PersistFailures {
		if failures, err = failcache.Load(cfg.StateFile); err != nil {
			s.printer.Warn(fmt.Sprintf("ignoring failure cache: %v", err))
			failures = failcache.New()
		}
	}

	if cfg.HistoryDB != "" {
		if s.store, err = openHistory(ctx, cfg.HistoryDB); err != nil {
			s.printer.Warn(fmt.Sprintf("history disabled: %v", err))
		}
	}

	if cfg.TelemetryFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TelemetryFile), 0o755); err != nil {
			s.printer.Warn(fmt.Sprintf("telemetry disabled: %v", err))
		} else if s.emitter, err = telemetry.NewEmitter(cfg.TelemetryFile); err != nil {
			s.printer.Warn(fmt.Sprintf("telemetry disabled: %v", err))
		}
	}

	sessionID := s.emitter.SessionID()
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.compiler = fxc.NewInvoker(cfg.CompilerPath, cfg.CompilerArgs, cfg.Verbose)
	orch := &build.Orchestrator{
		Compiler:  s.compiler,
		Reporter:  s.printer,
		Telemetry: s.emitter,
		Session:   sessionID,
		Options: build.Options{
			OutDir:      cfg.OutDir,
			ShaderModel: cfg.ShaderModel,
			Policy:      policy,
			Render: cbuffer.RenderOptions{
				Namespace:      cfg.Namespace,
				InnerNamespace: cfg.InnerNamespace,
			},
		},
	}
	if s.store != nil {
		orch.Recorder = s.store
	}

	s.loop = &watch.Loop{
		State:        build.NewState(failures),
		Orchestrator: orch,
		Reporter:     s.printer,
		Telemetry:    s.emitter,
		Options: watch.Options{
			ShaderDir:       cfg.ShaderDir,
			SourceGlob:      cfg.SourceGlob,
			OutDir:          cfg.OutDir,
			StateFile:       cfg.StateFile,
			PersistFailures: cfg.PersistFailures,
			PollInterval:    cfg.PollInterval,
			Debounce:        cfg.Debounce,
		},
	}
	return s, nil
}

// Close releases the history store and telemetry file.
func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.printer.Warn(fmt.Sprintf("closing history: %v", err))
		}
	}
	if err := s.emitter.Close(); err != nil {
		s.printer.Warn(err.Error())
	}
}

func openHistory(ctx context.Context, path string) (*history.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return history.Open(ctx, path)
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		printer.Info("\nshutting down...")
		cancel()
	}()
	return ctx, cancel
}
