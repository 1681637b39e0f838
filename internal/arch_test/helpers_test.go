// Package arch_test checks structural rules that span fxwatch's internal
// packages.
package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/papapumpkin/fxwatch"

// sourceFile is one parsed non-test file of an internal package.
type sourceFile struct {
	rel  string // Path relative to the repository root
	fset *token.FileSet
	ast  *ast.File
}

// loadInternal parses the non-test Go files of every package below
// internal/, keyed by package directory name.
func loadInternal(t *testing.T) map[string][]sourceFile {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root := filepath.Dir(wd) // go test runs in internal/arch_test

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading %s: %v", root, err)
	}

	pkgs := make(map[string][]sourceFile)
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		paths, err := filepath.Glob(filepath.Join(root, e.Name(), "*.go"))
		if err != nil {
			t.Fatalf("glob %s: %v", e.Name(), err)
		}
		for _, p := range paths {
			if strings.HasSuffix(p, "_test.go") {
				continue
			}
			fset := token.NewFileSet()
			f, err := parser.ParseFile(fset, p, nil, parser.ParseComments)
			if err != nil {
				t.Fatalf("parsing %s: %v", p, err)
			}
			pkgs[e.Name()] = append(pkgs[e.Name()], sourceFile{
				rel:  filepath.Join("internal", e.Name(), filepath.Base(p)),
				fset: fset,
				ast:  f,
			})
		}
	}
	if len(pkgs) == 0 {
		t.Fatalf("no packages found under %s", root)
	}
	return pkgs
}

// imports returns the unquoted import paths of f.
func (f sourceFile) imports() []string {
	out := make([]string, 0, len(f.ast.Imports))
	for _, imp := range f.ast.Imports {
		if p, err := strconv.Unquote(imp.Path.Value); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// line returns the line number of pos within f.
func (f sourceFile) line(pos token.Pos) int {
	return f.fset.Position(pos).Line
}

// parseSnippet parses declarations in a throwaway package.
func parseSnippet(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "snippet.go", "package p\n\n"+src+"\n", parser.ParseComments)
	if err != nil {
		t.Fatalf("parsing snippet: %v", err)
	}
	return f
}
