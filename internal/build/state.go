// Package build drives incremental shader compilation: it tracks the shader
// sources in a directory, decides which variants are stale, invokes the
// compiler and regenerates constant-buffer headers from its output.
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/papapumpkin/fxwatch/internal/deps"
	"github.com/papapumpkin/fxwatch/internal/failcache"
	"github.com/papapumpkin/fxwatch/internal/shader"
)

// State is everything the build remembers between passes. It is owned by a
// single goroutine.
type State struct {
	Sources  map[string]*shader.Source // Keyed by cleaned source path
	Deps     *deps.Index
	Failures *failcache.Cache
}

// NewState returns an empty state backed by failures. A nil cache is
// replaced with an empty one.
func NewState(failures *failcache.Cache) *State {
	if failures == nil {
		failures = failcache.New()
	}
	idx, _ := deps.Build(nil)
	return &State{
		Sources:  make(map[string]*shader.Source),
		Deps:     idx,
		Failures: failures,
	}
}

// ScanReport summarizes what a Rescan changed.
type ScanReport struct {
	Added    []string
	Changed  []string
	Removed  []string
	Warnings map[string][]shader.Warning // Annotation warnings per source path
	Errors   []error                     // Unreadable sources and includes
}

// Empty reports whether the rescan found nothing new.
func (r ScanReport) Empty() bool {
	return len(r.Added) == 0 && len(r.Changed) == 0 && len(r.Removed) == 0
}

// Rescan synchronizes the state with the files in dir matching glob. New
// files are scanned, files whose modification time changed are re-scanned,
// and files that disappeared are purged together with their failure record.
// The include index is rebuilt from scratch afterwards.
func (s *State) Rescan(dir, glob string) (ScanReport, error) {
	matches, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return ScanReport{}, fmt.Errorf("build: glob %q: %w", glob, err)
	}

	report := ScanReport{Warnings: make(map[string][]shader.Warning)}
	present := make(map[string]bool, len(matches))

	for _, m := range matches {
		path := filepath.Clean(m)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		present[path] = true

		prev, known := s.Sources[path]
		if known && prev.ModTime.Equal(info.ModTime()) {
			continue
		}

		src, warnings, err := shader.LoadSource(path)
		if err != nil {
			report.Errors = append(report.Errors, err)
			src = &shader.Source{
				Path:        path,
				Root:        shader.RootName(path),
				ModTime:     info.ModTime(),
				EntryPoints: map[shader.Stage][]string{},
			}
		}
		if len(warnings) > 0 {
			report.Warnings[path] = warnings
		}
		s.Sources[path] = src

		if known {
			report.Changed = append(report.Changed, path)
		} else {
			report.Added = append(report.Added, path)
		}
	}

	for path := range s.Sources {
		if present[path] {
			continue
		}
		delete(s.Sources, path)
		s.Failures.Clear(path)
		report.Removed = append(report.Removed, path)
	}
	sort.Strings(report.Removed)

	idx, errs := deps.Build(s.Paths())
	s.Deps = idx
	report.Errors = append(report.Errors, errs...)
	return report, nil
}

// Paths returns the tracked source paths, sorted.
func (s *State) Paths() []string {
	out := make([]string, 0, len(s.Sources))
	for p := range s.Sources {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Sorted returns the tracked sources ordered by path.
func (s *State) Sorted() []*shader.Source {
	paths := s.Paths()
	out := make([]*shader.Source, len(paths))
	for i, p := range paths {
		out[i] = s.Sources[p]
	}
	return out
}

// WatchDirs returns every directory holding a tracked source or one of its
// includes.
func (s *State) WatchDirs() []string {
	return s.Deps.Dirs()
}
