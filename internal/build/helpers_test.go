package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/papapumpkin/fxwatch/internal/history"
	"github.com/papapumpkin/fxwatch/internal/shader"
)

// reflectionListing is a minimal disassembly with one live constant buffer.
const reflectionListing = `//
// cbuffer Params
// {
//
//   float4 tint;                       // Offset:    0 Size:    16
//   float gain;                        // Offset:   16 Size:     4
//
// }
//
ps_5_0
ret
`

// fakeCompiler writes plausible outputs for every job unless told to fail.
type fakeCompiler struct {
	fail  map[string]bool // Entry points that exit nonzero
	run   func(ctx context.Context, job shader.Job) (shader.Result, error)
	calls []shader.Job
}

func (f *fakeCompiler) Compile(ctx context.Context, job shader.Job) (shader.Result, error) {
	f.calls = append(f.calls, job)
	if f.run != nil {
		return f.run(ctx, job)
	}
	if f.fail[job.Entry] {
		return shader.Result{ExitCode: 1, Output: "error X3000: syntax error"}, nil
	}
	if err := os.WriteFile(job.ObjectPath, []byte("DXBC"), 0o644); err != nil {
		return shader.Result{}, err
	}
	if err := os.WriteFile(job.AsmPath, []byte(reflectionListing), 0o644); err != nil {
		return shader.Result{}, err
	}
	return shader.Result{Duration: time.Millisecond}, nil
}

func (f *fakeCompiler) labels() []string {
	out := make([]string, len(f.calls))
	for i, j := range f.calls {
		out[i] = j.Label()
	}
	return out
}

func (f *fakeCompiler) reset() { f.calls = nil }

// fakeRecorder keeps history rows in memory.
type fakeRecorder struct {
	compiles []history.Compile
	headers  []history.Header
}

func (r *fakeRecorder) RecordCompile(_ context.Context, c history.Compile) error {
	r.compiles = append(r.compiles, c)
	return nil
}

func (r *fakeRecorder) RecordHeader(_ context.Context, h history.Header) error {
	r.headers = append(r.headers, h)
	return nil
}

// writeFile writes content to dir/name and backdates it to mtime.
func writeFile(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	touch(t, path, mtime)
	return path
}

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// fixture is a shader directory with a State and an Orchestrator wired to a
// fake compiler.
type fixture struct {
	dir    string
	outDir string
	base   time.Time
	st     *State
	comp   *fakeCompiler
	rec    *fakeRecorder
	orch   *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		outDir: filepath.Join(dir, "out"),
		base:   time.Now().Add(-time.Hour).Truncate(time.Second),
		st:     NewState(nil),
		comp:   &fakeCompiler{fail: map[string]bool{}},
		rec:    &fakeRecorder{},
	}
	f.orch = &Orchestrator{
		Compiler: f.comp,
		Recorder: f.rec,
		Options: Options{
			OutDir:      f.outDir,
			ShaderModel: shader.DefaultShaderModel,
			Policy:      shader.PolicyBoth,
		},
	}
	return f
}

func (f *fixture) rescan(t *testing.T) ScanReport {
	t.Helper()
	rep, err := f.st.Rescan(f.dir, "*.hlsl")
	if err != nil {
		t.Fatalf("Rescan: %v", err)
	}
	return rep
}

func (f *fixture) pass(t *testing.T) Summary {
	t.Helper()
	f.rescan(t)
	f.comp.reset()
	sum, err := f.orch.Pass(context.Background(), f.st)
	if err != nil {
		t.Fatalf("Pass: %v", err)
	}
	return sum
}
