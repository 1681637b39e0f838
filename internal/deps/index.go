// Package deps indexes #include directives between shader files and resolves
// the transitive set of files each shader depends on.
package deps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var includeRe = regexp.MustCompile(`^\s*#\s*include\s+"([^"]+)"`)

// Index maps each scanned file to the names it includes directly. Names are
// relative to the directory of the including file.
type Index struct {
	direct map[string][]string
}

// ScanIncludes returns the included file names in r, in order, without
// duplicates.
func ScanIncludes(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		m := includeRe.FindStringSubmatch(sc.Text())
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names, sc.Err()
}

// Build scans every file in files and, transitively, every included file
// that exists. Read failures are returned alongside the index; a file that
// cannot be read is indexed with no includes.
func Build(files []string) (*Index, []error) {
	ix := &Index{direct: make(map[string][]string)}
	var errs []error

	queue := make([]string, 0, len(files))
	for _, f := range files {
		queue = append(queue, filepath.Clean(f))
	}

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		if _, done := ix.direct[file]; done {
			continue
		}

		names, err := scanFile(file)
		if err != nil {
			ix.direct[file] = nil
			if !os.IsNotExist(err) || isRoot(file, files) {
				errs = append(errs, err)
			}
			continue
		}
		ix.direct[file] = names

		dir := filepath.Dir(file)
		for _, name := range names {
			queue = append(queue, filepath.Join(dir, name))
		}
	}
	return ix, errs
}

// Direct returns the names file includes directly.
func (ix *Index) Direct(file string) []string {
	return ix.direct[filepath.Clean(file)]
}

// Files returns every indexed file, sorted.
func (ix *Index) Files() []string {
	out := make([]string, 0, len(ix.direct))
	for f := range ix.direct {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Closure returns the resolved paths of every file file depends on,
// following includes transitively. Included files that were never indexed
// (for example because they do not exist) are still listed so callers can
// detect them. The result is sorted and excludes file itself.
func (ix *Index) Closure(file string) []string {
	root := filepath.Clean(file)
	seen := map[string]bool{root: true}
	var out []string

	stack := []string{root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dir := filepath.Dir(cur)
		for _, name := range ix.direct[cur] {
			dep := filepath.Join(dir, name)
			if seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, dep)
			stack = append(stack, dep)
		}
	}
	sort.Strings(out)
	return out
}

// Dirs returns the distinct directories containing indexed files or their
// includes, sorted.
func (ix *Index) Dirs() []string {
	seen := make(map[string]bool)
	for f, names := range ix.direct {
		seen[filepath.Dir(f)] = true
		for _, n := range names {
			seen[filepath.Dir(filepath.Join(filepath.Dir(f), n))] = true
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func scanFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := ScanIncludes(f)
	if err != nil {
		return nil, fmt.Errorf("deps: scan %s: %w", path, err)
	}
	return names, nil
}

// isRoot reports whether file was one of the explicitly requested files.
func isRoot(file string, roots []string) bool {
	for _, r := range roots {
		if filepath.Clean(r) == file {
			return true
		}
	}
	return false
}
