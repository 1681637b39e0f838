package shader

import (
	"path/filepath"
	"strings"
	"time"
)

// headerSuffix is appended to a variant's output base to name its generated
// constant-buffer header.
const headerSuffix = ".cbuffers.hpp"

// Variant is one buildable output of an entry point: optimized or debug.
type Variant struct {
	Stage Stage
	Entry string
	Debug bool
}

// Policy selects which variants of each entry point are built.
type Policy string

// Variant policies.
const (
	PolicyBoth      Policy = "both"
	PolicyOptimized Policy = "optimized"
	PolicyDebug     Policy = "debug"
)

// ParsePolicy validates a policy name. The empty string selects PolicyBoth.
func ParsePolicy(s string) (Policy, bool) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyBoth, true
	case PolicyBoth, PolicyOptimized, PolicyDebug:
		return p, true
	}
	return "", false
}

// Variants enumerates the variants of src allowed by policy in build order:
// stages in Stages order, entry points in file order, optimized before debug.
func (src *Source) Variants(policy Policy) []Variant {
	var out []Variant
	for _, stage := range Stages() {
		for _, entry := range src.EntryPoints[stage] {
			if policy != PolicyDebug {
				out = append(out, Variant{Stage: stage, Entry: entry})
			}
			if policy != PolicyOptimized {
				out = append(out, Variant{Stage: stage, Entry: entry, Debug: true})
			}
		}
	}
	return out
}

// Outputs names the files produced for a variant of the shader with the given
// root inside outDir.
type Outputs struct {
	Object string
	Asm    string
	Header string
}

// OutputsFor returns the deterministic output paths of v.
func OutputsFor(outDir, root string, v Variant) Outputs {
	base := root + "_" + v.Entry
	if v.Debug {
		base += "D"
	}
	return Outputs{
		Object: filepath.Join(outDir, base+"."+v.Stage.ObjectExt()),
		Asm:    filepath.Join(outDir, base+"."+v.Stage.AsmExt()),
		Header: filepath.Join(outDir, strings.ToLower(base+headerSuffix)),
	}
}

// Job is a single compiler invocation.
type Job struct {
	Source     string // Shader source path
	Root       string // Source base name without extension
	Stage      Stage
	Entry      string
	Profile    string // Target profile, e.g. "vs_5_0"
	Debug      bool   // Debug variant: optimizations off, debug info on
	ObjectPath string
	AsmPath    string
}

// Result is the outcome of a Job that ran to completion.
type Result struct {
	ExitCode int
	Output   string // Combined compiler stdout and stderr
	Duration time.Duration
}

// OK reports whether the compiler exited successfully.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// NewJob builds the compiler job for variant v of src.
func NewJob(src *Source, v Variant, outDir, model string) Job {
	out := OutputsFor(outDir, src.Root, v)
	return Job{
		Source:     src.Path,
		Root:       src.Root,
		Stage:      v.Stage,
		Entry:      v.Entry,
		Profile:    v.Stage.Profile(model),
		Debug:      v.Debug,
		ObjectPath: out.Object,
		AsmPath:    out.Asm,
	}
}

// Label returns a short human-readable name for the job, e.g. "lit_PsMainD".
func (j Job) Label() string {
	label := j.Root + "_" + j.Entry
	if j.Debug {
		label += "D"
	}
	return label
}
