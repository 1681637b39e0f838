package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/fxwatch/internal/build"
	"github.com/papapumpkin/fxwatch/internal/shader"
	"github.com/papapumpkin/fxwatch/internal/telemetry"
)

// ScanReporter receives the results of directory rescans.
type ScanReporter interface {
	ShaderAdded(path string)
	ShaderRemoved(path string)
	ScanWarning(path string, w shader.Warning)
	Warn(msg string)
}

// Options configures the loop.
type Options struct {
	ShaderDir       string
	SourceGlob      string
	OutDir          string // Only removals below OutDir trigger a tick
	StateFile       string // Failure cache location; empty disables saving
	PersistFailures bool
	PollInterval    time.Duration // Used when file notifications are unavailable
	Debounce        time.Duration
}

// Loop owns the build state and runs one tick at a time.
type Loop struct {
	State        *build.State
	Orchestrator *build.Orchestrator
	Reporter     ScanReporter
	Telemetry    *telemetry.Emitter // Optional; nil is a no-op
	Options      Options

	watcher *Watcher
}

// Tick rescans the shader directory, runs a build pass and saves the failure
// cache if it changed. Only a rescan or pass that cannot proceed returns an
// error; per-shader problems are reported and the tick goes on.
func (l *Loop) Tick(ctx context.Context) (build.Summary, error) {
	report, err := l.State.Rescan(l.Options.ShaderDir, l.Options.SourceGlob)
	if err != nil {
		return build.Summary{}, err
	}
	l.reportScan(report)

	sum, err := l.Orchestrator.Pass(ctx, l.State)
	if err != nil {
		return sum, err
	}

	if l.Options.PersistFailures && l.Options.StateFile != "" && l.State.Failures.Dirty() {
		if err := l.State.Failures.Save(l.Options.StateFile); err != nil {
			l.Reporter.Warn(fmt.Sprintf("saving failure cache: %v", err))
		}
	}
	return sum, nil
}

// Run ticks once, then again whenever a watched file changes, until ctx is
// cancelled. When fsnotify cannot be used the loop polls instead. Tick errors
// are reported and never end the loop. Cancellation returns nil.
func (l *Loop) Run(ctx context.Context) error {
	w, err := NewWatcher(l.Options.Debounce, l.ignored)
	if err != nil {
		l.Reporter.Warn(fmt.Sprintf("file notifications unavailable, polling every %s: %v", l.pollInterval(), err))
	} else {
		l.watcher = w
		w.Start()
		defer func() {
			w.Stop()
			l.watcher = nil
		}()
	}

	var changes <-chan string
	var poll <-chan time.Time
	if l.watcher != nil {
		changes = l.watcher.Changes
	} else {
		ticker := time.NewTicker(l.pollInterval())
		defer ticker.Stop()
		poll = ticker.C
	}

	for {
		if done := l.runTick(ctx); done {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		case <-poll:
		}
	}
}

// runTick performs one tick and refreshes the watched directories. It
// reports whether ctx was cancelled.
func (l *Loop) runTick(ctx context.Context) bool {
	if _, err := l.Tick(ctx); err != nil {
		if ctx.Err() != nil {
			return true
		}
		l.Reporter.Warn(err.Error())
	}
	l.watchDirs()
	return ctx.Err() != nil
}

func (l *Loop) watchDirs() {
	if l.watcher == nil {
		return
	}
	dirs := append([]string{l.Options.ShaderDir}, l.State.WatchDirs()...)
	if l.Options.OutDir != "" {
		if info, err := os.Stat(l.Options.OutDir); err == nil && info.IsDir() {
			dirs = append(dirs, l.Options.OutDir)
		}
	}
	for _, d := range dirs {
		if err := l.watcher.Add(d); err != nil {
			l.Reporter.Warn(fmt.Sprintf("watching %s: %v", d, err))
		}
	}
}

func (l *Loop) reportScan(r build.ScanReport) {
	for _, p := range r.Added {
		l.Reporter.ShaderAdded(p)
		l.emit(telemetry.Event{Kind: telemetry.KindShaderAdded, Shader: p})
	}
	for _, p := range r.Removed {
		l.Reporter.ShaderRemoved(p)
		l.emit(telemetry.Event{Kind: telemetry.KindShaderRemoved, Shader: p})
	}
	for _, p := range l.State.Paths() {
		for _, w := range r.Warnings[p] {
			l.Reporter.ScanWarning(p, w)
			l.emit(telemetry.Event{Kind: telemetry.KindScanWarning, Shader: p, Data: w.String()})
		}
	}
	for _, err := range r.Errors {
		l.Reporter.Warn(err.Error())
	}
}

func (l *Loop) emit(evt telemetry.Event) {
	if err := l.Telemetry.Emit(evt); err != nil {
		l.Reporter.Warn(err.Error())
	}
}

// ignored reports whether an event is the loop's own output being written.
// Removing or renaming outputs, or the output directory itself, is not
// ignored: those variants are stale again.
func (l *Loop) ignored(name string, op fsnotify.Op) bool {
	if l.Options.OutDir == "" || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
		return false
	}
	out, err := filepath.Abs(l.Options.OutDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return abs == out || strings.HasPrefix(abs, out+string(filepath.Separator))
}

func (l *Loop) pollInterval() time.Duration {
	if l.Options.PollInterval <= 0 {
		return time.Second
	}
	return l.Options.PollInterval
}
