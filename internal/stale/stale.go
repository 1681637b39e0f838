// Package stale decides whether compiled shader outputs are out of date with
// respect to their source file and everything it includes.
package stale

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// ErrSourceMissing indicates the shader source vanished before its
// modification time could be read.
var ErrSourceMissing = errors.New("shader source missing")

// Stamp is the result of looking up a file's modification time. A file that
// does not exist is reported with Exists false and no error.
type Stamp struct {
	Exists  bool
	ModTime time.Time
}

// Stat returns the Stamp for path. Only unexpected I/O failures are errors.
func Stat(path string) (Stamp, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Stamp{}, nil
	}
	if err != nil {
		return Stamp{}, fmt.Errorf("stale: stat %s: %w", path, err)
	}
	return Stamp{Exists: true, ModTime: info.ModTime()}, nil
}

// Effective is the last time a shader or anything it depends on changed.
// Unbounded marks a shader with a dependency that could not be read; such a
// shader is newer than any output.
type Effective struct {
	Time      time.Time
	Unbounded bool
	Missing   []string // Dependencies that were absent or unreadable
}

// Equal reports whether e and o describe the same change state.
func (e Effective) Equal(o Effective) bool {
	return e.Unbounded == o.Unbounded && e.Time.Equal(o.Time)
}

// String formats the effective time for logs.
func (e Effective) String() string {
	if e.Unbounded {
		return fmt.Sprintf("%s (unbounded: %d missing)", e.Time.Format(time.RFC3339Nano), len(e.Missing))
	}
	return e.Time.Format(time.RFC3339Nano)
}

// Evaluate computes the effective change time of source given its resolved
// dependency paths. It fails only when source itself cannot be read.
func Evaluate(source string, deps []string) (Effective, error) {
	st, err := Stat(source)
	if err != nil {
		return Effective{}, err
	}
	if !st.Exists {
		return Effective{}, fmt.Errorf("stale: %s: %w", source, ErrSourceMissing)
	}

	eff := Effective{Time: st.ModTime}
	for _, dep := range deps {
		ds, err := Stat(dep)
		if err != nil || !ds.Exists {
			eff.Unbounded = true
			eff.Missing = append(eff.Missing, dep)
			continue
		}
		if ds.ModTime.After(eff.Time) {
			eff.Time = ds.ModTime
		}
	}
	return eff, nil
}

// IsStale reports whether output must be rebuilt. Missing outputs are always
// stale, as are outputs of an Unbounded shader. An unreadable output is
// reported stale together with the error.
func IsStale(eff Effective, output string) (bool, error) {
	st, err := Stat(output)
	if err != nil {
		return true, err
	}
	if !st.Exists || eff.Unbounded {
		return true, nil
	}
	return st.ModTime.Before(eff.Time), nil
}

// AnyStale reports whether any of outputs must be rebuilt. The first I/O
// error encountered is returned alongside a true result.
func AnyStale(eff Effective, outputs ...string) (bool, error) {
	for _, out := range outputs {
		stale, err := IsStale(eff, out)
		if err != nil || stale {
			return true, err
		}
	}
	return false, nil
}
