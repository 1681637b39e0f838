package cbuffer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// commentGap is the minimum number of spaces between a member declaration
// and its aligned trailing comment.
const commentGap = 8

// Default namespaces wrapping generated structs.
const (
	DefaultNamespace      = "tano"
	DefaultInnerNamespace = "cb"
)

// RenderOptions controls the scaffold around generated structs.
type RenderOptions struct {
	Namespace      string
	InnerNamespace string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.InnerNamespace == "" {
		o.InnerNamespace = DefaultInnerNamespace
	}
	return o
}

// Render produces the header text for buffers. Dropped buffers are omitted;
// when none remain it returns false and no header should be written.
func Render(buffers []Buffer, opts RenderOptions) (string, bool) {
	opts = opts.withDefaults()

	var structs []string
	for _, buf := range buffers {
		if buf.Dropped() {
			continue
		}
		structs = append(structs, renderStruct(buf))
	}
	if len(structs) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("#pragma once\n")
	fmt.Fprintf(&b, "namespace %s\n{\n", opts.Namespace)
	fmt.Fprintf(&b, "  namespace %s\n  {\n", opts.InnerNamespace)
	b.WriteString(strings.Join(structs, "\n"))
	b.WriteString("\n  }\n}\n")
	return b.String(), true
}

func renderStruct(buf Buffer) string {
	maxLen := 0
	for _, m := range buf.Members {
		maxLen = max(maxLen, len(m.Name)+len(m.Type.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "    struct %s\n    {\n", buf.Name)
	for _, f := range Layout(buf.Members) {
		fmt.Fprintf(&b, "      %s %s;", f.Type, f.Name)
		if f.Comment != "" {
			pad := max(maxLen-len(f.Name)-len(f.Type), 0) + commentGap
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(f.Comment)
		}
		b.WriteByte('\n')
	}
	b.WriteString("    };")
	return b.String()
}

// WriteIfChanged writes content to path unless the file already holds
// exactly those bytes. The write goes through a temp file and rename so the
// target is never left half written. It reports whether the file changed.
func WriteIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("cbuffer: read existing header: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("cbuffer: create header dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return false, fmt.Errorf("cbuffer: write temp header: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("cbuffer: rename header: %w", err)
	}
	return true, nil
}

// Generate renders the buffers of refl and writes them to path if the
// content changed. It reports whether a header was rendered and whether the
// file was rewritten.
func Generate(refl *Reflection, path string, opts RenderOptions) (rendered, written bool, err error) {
	text, ok := Render(refl.Buffers, opts)
	if !ok {
		return false, false, nil
	}
	written, err = WriteIfChanged(path, []byte(text))
	return true, written, err
}
