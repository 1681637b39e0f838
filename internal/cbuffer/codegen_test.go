package cbuffer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mustType(t *testing.T, hlsl string) Type {
	t.Helper()
	typ, ok := LookupType(hlsl)
	if !ok {
		t.Fatalf("unknown type %q", hlsl)
	}
	return typ
}

func TestRender_Golden(t *testing.T) {
	t.Parallel()

	buffers := []Buffer{
		{
			Name: "LitPerFrame",
			Members: []Member{
				{Name: "a", Type: mustType(t, "float"), Comment: "// a"},
				{Name: "b", Type: mustType(t, "float"), Comment: "// b"},
				{Name: "c", Type: mustType(t, "float"), Comment: "// c"},
				{Name: "uv", Type: mustType(t, "float2"), Comment: "// uv"},
			},
		},
		{
			Name: "LitDebug",
			Members: []Member{
				{Name: "tint", Type: mustType(t, "float4"), Comment: "// [unused]", Unused: true},
			},
			UnusedCount: 1,
		},
		{
			Name:    "LitObject",
			Members: []Member{{Name: "world", Type: mustType(t, "float4x4")}},
		},
	}

	want := `#pragma once
namespace tano
{
  namespace cb
  {
    struct LitPerFrame
    {
      float a;        // a
      float b;        // b
      float c;        // c
      float padding0[1];
      vec2 uv;        // uv
    };
    struct LitObject
    {
      Matrix world;
    };
  }
}
`
	got, ok := Render(buffers, RenderOptions{})
	if !ok {
		t.Fatal("Render reported no buffers")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rendered header (-want +got):\n%s", diff)
	}
}

func TestRender_Namespaces(t *testing.T) {
	t.Parallel()

	buffers := []Buffer{{Name: "X", Members: []Member{{Name: "v", Type: mustType(t, "float4")}}}}
	got, ok := Render(buffers, RenderOptions{Namespace: "engine", InnerNamespace: "gpu"})
	if !ok {
		t.Fatal("Render reported no buffers")
	}
	if !strings.Contains(got, "namespace engine\n{\n  namespace gpu\n") {
		t.Errorf("custom namespaces not rendered:\n%s", got)
	}
}

// A buffer whose every member is unused never reaches the header; a buffer
// with a mix keeps all its members.
func TestRender_DroppedBuffers(t *testing.T) {
	t.Parallel()

	mixed := Buffer{
		Name: "Mixed",
		Members: []Member{
			{Name: "live", Type: mustType(t, "float")},
			{Name: "dead", Type: mustType(t, "float"), Unused: true, Comment: "// [unused]"},
		},
		UnusedCount: 1,
	}
	allUnused := Buffer{
		Name:        "Ghost",
		Members:     []Member{{Name: "g", Type: mustType(t, "float"), Unused: true}},
		UnusedCount: 1,
	}

	got, ok := Render([]Buffer{allUnused, mixed}, RenderOptions{})
	if !ok {
		t.Fatal("expected Mixed to be rendered")
	}
	if strings.Contains(got, "Ghost") {
		t.Errorf("all-unused buffer rendered:\n%s", got)
	}
	for _, name := range []string{"struct Mixed", "float live;", "float dead;"} {
		if !strings.Contains(got, name) {
			t.Errorf("expected %q in output:\n%s", name, got)
		}
	}

	if _, ok := Render([]Buffer{allUnused, {Name: "Empty"}}, RenderOptions{}); ok {
		t.Error("Render should report nothing when every buffer is dropped")
	}
}

// Generating twice from the same reflection yields identical bytes, and the
// second write leaves the file untouched.
func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	refl, err := ParseFile(filepath.Join("testdata", "lit_PsMain.psa"), "lit")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	path := filepath.Join(t.TempDir(), "lit_psmain.cbuffers.hpp")
	rendered, written, err := Generate(refl, path, RenderOptions{})
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if !rendered || !written {
		t.Fatalf("first Generate: rendered=%v written=%v, want true/true", rendered, written)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	_, written, err = Generate(refl, path, RenderOptions{})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if written {
		t.Error("second Generate should not rewrite an identical header")
	}

	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("header content changed between identical generations")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("mtime changed to %v, want %v", info.ModTime(), old)
	}
}

func TestGenerate_FixtureContents(t *testing.T) {
	t.Parallel()

	refl, err := ParseFile(filepath.Join("testdata", "lit_PsMain.psa"), "lit")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	got, ok := Render(refl.Buffers, RenderOptions{})
	if !ok {
		t.Fatal("expected rendered header")
	}

	wantLines := []string{
		"      Matrix viewProj;        // Offset:    0 Size:    64",
		"      float time;             // Offset:   64 Size:     4",
		"      float padding0[1];",
		"      vec2 screenSize;        // Offset:   80 Size:     8",
		"      float padding1[2];",
		"      vec3 cameraPos;         // Offset:  144 Size:    12",
		"    struct LitLights",
		"      float lightCount;        // Offset:   64 Size:     4",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line+"\n") {
			t.Errorf("missing line %q in:\n%s", line, got)
		}
	}
	if strings.Contains(got, "LitDebug") {
		t.Error("all-unused Debug buffer should be dropped")
	}
}

func TestWriteIfChanged_ContentChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "h.hpp")
	if changed, err := WriteIfChanged(path, []byte("one")); err != nil || !changed {
		t.Fatalf("first write: changed=%v err=%v", changed, err)
	}
	if changed, err := WriteIfChanged(path, []byte("two")); err != nil || !changed {
		t.Fatalf("second write: changed=%v err=%v", changed, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
