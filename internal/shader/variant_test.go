package shader

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOutputsFor(t *testing.T) {
	t.Parallel()

	out := filepath.Join("shaders", "out")
	tests := []struct {
		name string
		v    Variant
		want Outputs
	}{
		{
			name: "optimized pixel",
			v:    Variant{Stage: StagePixel, Entry: "PsMain"},
			want: Outputs{
				Object: filepath.Join(out, "Lit_PsMain.pso"),
				Asm:    filepath.Join(out, "Lit_PsMain.psa"),
				Header: filepath.Join(out, "lit_psmain.cbuffers.hpp"),
			},
		},
		{
			name: "debug compute",
			v:    Variant{Stage: StageCompute, Entry: "CsBlur", Debug: true},
			want: Outputs{
				Object: filepath.Join(out, "Lit_CsBlurD.cso"),
				Asm:    filepath.Join(out, "Lit_CsBlurD.csa"),
				Header: filepath.Join(out, "lit_csblurd.cbuffers.hpp"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := OutputsFor(out, "Lit", tt.v)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("OutputsFor mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSourceVariants_Policy(t *testing.T) {
	t.Parallel()

	src := &Source{
		Root: "lit",
		EntryPoints: map[Stage][]string{
			StagePixel:  {"PsMain"},
			StageVertex: {"VsMain"},
		},
	}

	tests := []struct {
		policy Policy
		want   []Variant
	}{
		{PolicyBoth, []Variant{
			{Stage: StageVertex, Entry: "VsMain"},
			{Stage: StageVertex, Entry: "VsMain", Debug: true},
			{Stage: StagePixel, Entry: "PsMain"},
			{Stage: StagePixel, Entry: "PsMain", Debug: true},
		}},
		{PolicyOptimized, []Variant{
			{Stage: StageVertex, Entry: "VsMain"},
			{Stage: StagePixel, Entry: "PsMain"},
		}},
		{PolicyDebug, []Variant{
			{Stage: StageVertex, Entry: "VsMain", Debug: true},
			{Stage: StagePixel, Entry: "PsMain", Debug: true},
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, src.Variants(tt.policy)); diff != "" {
				t.Errorf("Variants mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Policy{"": PolicyBoth, "Both": PolicyBoth, " debug ": PolicyDebug, "optimized": PolicyOptimized} {
		got, ok := ParsePolicy(in)
		if !ok || got != want {
			t.Errorf("ParsePolicy(%q) = %q, %v; want %q, true", in, got, ok, want)
		}
	}
	if _, ok := ParsePolicy("release"); ok {
		t.Error(`ParsePolicy("release") should fail`)
	}
}

func TestNewJob(t *testing.T) {
	t.Parallel()

	src := &Source{Path: filepath.Join("shaders", "lit.hlsl"), Root: "lit"}
	job := NewJob(src, Variant{Stage: StageVertex, Entry: "VsMain", Debug: true}, "out", "")

	if job.Profile != "vs_5_0" {
		t.Errorf("Profile = %q, want %q", job.Profile, "vs_5_0")
	}
	if job.ObjectPath != filepath.Join("out", "lit_VsMainD.vso") {
		t.Errorf("ObjectPath = %q", job.ObjectPath)
	}
	if job.Label() != "lit_VsMainD" {
		t.Errorf("Label() = %q, want %q", job.Label(), "lit_VsMainD")
	}
}

func TestParseStage(t *testing.T) {
	t.Parallel()

	for _, s := range Stages() {
		got, ok := ParseStage(s.String())
		if !ok || got != s {
			t.Errorf("ParseStage(%q) = %q, %v", s, got, ok)
		}
		if s.ObjectExt() == "" || s.AsmExt() == "" {
			t.Errorf("stage %q has no output extensions", s)
		}
	}
	if _, ok := ParseStage("hs"); ok {
		t.Error(`ParseStage("hs") should fail`)
	}
	if got := StagePixel.Profile("5_1"); got != "ps_5_1" {
		t.Errorf("Profile = %q, want ps_5_1", got)
	}
}
