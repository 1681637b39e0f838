package build

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/papapumpkin/fxwatch/internal/cbuffer"
	"github.com/papapumpkin/fxwatch/internal/history"
	"github.com/papapumpkin/fxwatch/internal/shader"
	"github.com/papapumpkin/fxwatch/internal/telemetry"
)

// Compiler runs a single shader compile job.
type Compiler interface {
	Compile(ctx context.Context, job shader.Job) (shader.Result, error)
}

// Reporter receives progress callbacks during a pass.
type Reporter interface {
	PassStarted(shaders int)
	ShaderSuppressed(path string)
	Compiling(job shader.Job)
	CompileDone(job shader.Job, res shader.Result)
	CompileFailed(job shader.Job, res shader.Result, err error)
	HeaderWritten(path string, buffers int)
	Warn(msg string)
	Debug(msg string)
	PassFinished(sum Summary)
}

// Recorder persists compile history.
type Recorder interface {
	RecordCompile(ctx context.Context, c history.Compile) error
	RecordHeader(ctx context.Context, h history.Header) error
}

// Options configures what a pass builds and where.
type Options struct {
	OutDir      string
	ShaderModel string
	Policy      shader.Policy
	Render      cbuffer.RenderOptions
}

// Orchestrator runs build passes over a State.
type Orchestrator struct {
	Compiler  Compiler
	Reporter  Reporter           // Optional
	Recorder  Recorder           // Optional
	Telemetry *telemetry.Emitter // Optional; nil is a no-op
	Session   string             // Stamped on history rows
	Options   Options
}

// Summary counts what one pass did.
type Summary struct {
	Shaders        int
	Suppressed     int
	Compiled       int
	Failed         int
	HeadersWritten int
	FailedShaders  []string
	Duration       time.Duration
}

// OK reports whether the pass had no compile failures.
func (s Summary) OK() bool { return s.Failed == 0 }

// Pass compiles every stale variant of every tracked shader. Shaders are
// handled in path order; a failing shader records a failure and skips its
// remaining variants without affecting other shaders. Cancelling ctx stops
// the pass and returns ctx.Err() without recording a failure for the
// interrupted compile.
func (o *Orchestrator) Pass(ctx context.Context, st *State) (Summary, error) {
	start := time.Now()
	rep := o.reporter()
	sum := Summary{Shaders: len(st.Sources)}

	if err := os.MkdirAll(o.Options.OutDir, 0o755); err != nil {
		return sum, fmt.Errorf("build: create output dir: %w", err)
	}

	rep.PassStarted(sum.Shaders)
	o.emit(telemetry.Event{Kind: telemetry.KindPassStart, Data: map[string]int{"shaders": sum.Shaders}})

	for _, src := range st.Sorted() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		plan := o.planShader(st, src)
		switch {
		case plan.Err != nil:
			rep.Warn(fmt.Sprintf("skipping %s: %v", src.Path, plan.Err))
			continue
		case plan.Suppressed:
			sum.Suppressed++
			rep.ShaderSuppressed(src.Path)
			continue
		}
		if err := o.buildShader(ctx, st, plan, &sum); err != nil {
			return sum, err
		}
	}

	sum.Duration = time.Since(start)
	rep.PassFinished(sum)
	o.emit(telemetry.Event{Kind: telemetry.KindPassDone, Data: map[string]int{
		"compiled": sum.Compiled,
		"failed":   sum.Failed,
		"headers":  sum.HeadersWritten,
	}})
	return sum, nil
}

// buildShader compiles the stale targets of one shader in order, stopping at
// the first failure. Only a compile that ran and exited nonzero suppresses the
// shader; a launch error is retried on the next pass. Only cancellation is
// returned as an error.
func (o *Orchestrator) buildShader(ctx context.Context, st *State, plan ShaderPlan, sum *Summary) error {
	rep := o.reporter()
	path := plan.Source.Path

	for _, t := range plan.Stale {
		if t.StatErr != nil {
			rep.Warn(fmt.Sprintf("treating %s as stale: %v", t.Job.Label(), t.StatErr))
		}

		rep.Compiling(t.Job)
		o.emit(telemetry.Event{Kind: telemetry.KindCompileStart, Shader: path, Data: jobData(t.Job)})

		res, err := o.Compiler.Compile(ctx, t.Job)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		o.record(ctx, t.Job, res, err)

		if err != nil || !res.OK() {
			// A compiler that never started says nothing about the source.
			if err == nil {
				st.Failures.RecordFailure(path, plan.Effective, t.Variant.Entry)
			}
			sum.Failed++
			sum.FailedShaders = append(sum.FailedShaders, path)
			rep.CompileFailed(t.Job, res, err)
			data := jobData(t.Job)
			data["exit_code"] = res.ExitCode
			if err != nil {
				data["error"] = err.Error()
			}
			o.emit(telemetry.Event{Kind: telemetry.KindCompileFailed, Shader: path, Data: data})
			return nil
		}

		sum.Compiled++
		st.Failures.Clear(path)
		rep.CompileDone(t.Job, res)
		o.emit(telemetry.Event{Kind: telemetry.KindCompileDone, Shader: path, Data: jobData(t.Job)})

		o.generateHeader(ctx, t, sum)
	}
	return nil
}

// generateHeader reads the reflection comments of a fresh disassembly and
// rewrites the variant's header when its content changed.
func (o *Orchestrator) generateHeader(ctx context.Context, t Target, sum *Summary) {
	rep := o.reporter()

	refl, err := cbuffer.ParseFile(t.Job.AsmPath, t.Job.Root)
	if err != nil {
		rep.Debug(fmt.Sprintf("no reflection for %s: %v", t.Job.Label(), err))
		return
	}
	for _, line := range refl.Skipped {
		rep.Debug(fmt.Sprintf("%s: skipped member %q", t.Job.Label(), line))
	}

	rendered, written, err := cbuffer.Generate(refl, t.Outputs.Header, o.Options.Render)
	if err != nil {
		rep.Warn(fmt.Sprintf("writing %s: %v", t.Outputs.Header, err))
		return
	}
	if !rendered || !written {
		return
	}

	buffers := 0
	for _, b := range refl.Buffers {
		if !b.Dropped() {
			buffers++
		}
	}
	sum.HeadersWritten++
	rep.HeaderWritten(t.Outputs.Header, buffers)
	o.emit(telemetry.Event{Kind: telemetry.KindHeaderWritten, Shader: t.Job.Source, Data: map[string]any{
		"path":    t.Outputs.Header,
		"buffers": buffers,
	}})
	if o.Recorder != nil {
		h := history.Header{Path: t.Outputs.Header, Shader: t.Job.Source, Buffers: buffers}
		if err := o.Recorder.RecordHeader(ctx, h); err != nil {
			rep.Warn(fmt.Sprintf("history: %v", err))
		}
	}
}

func (o *Orchestrator) record(ctx context.Context, job shader.Job, res shader.Result, runErr error) {
	if o.Recorder == nil {
		return
	}
	c := history.Compile{
		Session:   o.Session,
		Shader:    job.Source,
		Entry:     job.Entry,
		Stage:     string(job.Stage),
		Debug:     job.Debug,
		ExitCode:  res.ExitCode,
		Duration:  res.Duration,
		Output:    res.Output,
		StartedAt: time.Now().Add(-res.Duration),
	}
	if runErr != nil {
		c.ExitCode = -1
		c.Output = runErr.Error()
	}
	if err := o.Recorder.RecordCompile(ctx, c); err != nil {
		o.reporter().Warn(fmt.Sprintf("history: %v", err))
	}
}

func (o *Orchestrator) emit(evt telemetry.Event) {
	if err := o.Telemetry.Emit(evt); err != nil {
		o.reporter().Warn(err.Error())
	}
}

func (o *Orchestrator) reporter() Reporter {
	if o.Reporter == nil {
		return nopReporter{}
	}
	return o.Reporter
}

func jobData(job shader.Job) map[string]any {
	return map[string]any{
		"entry":   job.Entry,
		"profile": job.Profile,
		"debug":   job.Debug,
	}
}

type nopReporter struct{}

func (nopReporter) PassStarted(int) {}
func (nopReporter) ShaderSuppressed(string) {}
func (nopReporter) Compiling(shader.Job) {}
func (nopReporter) CompileDone(shader.Job, shader.Result) {}
func (nopReporter) CompileFailed(shader.Job, shader.Result, error) {}
func (nopReporter) HeaderWritten(string, int) {}
func (nopReporter) Warn(string) {}
func (nopReporter) Debug(string) {}
func (nopReporter) PassFinished(Summary) {}
