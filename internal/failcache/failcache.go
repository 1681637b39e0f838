// Package failcache remembers shaders whose last compile failed, so a broken
// shader is not recompiled on every pass until its inputs change again.
package failcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/fxwatch/internal/stale"
)

// Record describes a shader in a known-failing state.
type Record struct {
	Shader    string          // Shader source path
	Effective stale.Effective // Change state the failure was observed at
	Entry     string          // Entry point whose compile failed
	FailedAt  time.Time
}

// Cache maps shader paths to their failure records. The absence of a record
// is the success state. It is not safe for concurrent use.
type Cache struct {
	records map[string]Record
	dirty   bool
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{records: make(map[string]Record)}
}

// ShouldSkip reports whether shader failed at exactly eff, meaning nothing it
// depends on has changed since that failure.
func (c *Cache) ShouldSkip(shader string, eff stale.Effective) bool {
	rec, ok := c.records[shader]
	return ok && rec.Effective.Equal(eff)
}

// RecordFailure stores a failure for shader at eff, replacing any previous
// record.
func (c *Cache) RecordFailure(shader string, eff stale.Effective, entry string) {
	c.records[shader] = Record{
		Shader:    shader,
		Effective: eff,
		Entry:     entry,
		FailedAt:  time.Now(),
	}
	c.dirty = true
}

// Clear removes the failure record for shader, if any.
func (c *Cache) Clear(shader string) {
	if _, ok := c.records[shader]; !ok {
		return
	}
	delete(c.records, shader)
	c.dirty = true
}

// Lookup returns the failure record for shader.
func (c *Cache) Lookup(shader string) (Record, bool) {
	rec, ok := c.records[shader]
	return rec, ok
}

// Records returns all failure records sorted by shader path.
func (c *Cache) Records() []Record {
	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shader < out[j].Shader })
	return out
}

// Len returns the number of failing shaders.
func (c *Cache) Len() int {
	return len(c.records)
}

// Dirty reports whether the cache changed since it was loaded or saved.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// stateFile is the on-disk TOML layout. Times are stored as Unix nanoseconds
// so equality survives a round trip exactly.
type stateFile struct {
	Version  int           `toml:"version"`
	Failures []failureEntry `toml:"failures"`
}

type failureEntry struct {
	Shader    string    `toml:"shader"`
	Entry     string    `toml:"entry,omitempty"`
	TimeNanos int64     `toml:"effective_unix_nano"`
	Unbounded bool      `toml:"unbounded,omitempty"`
	FailedAt  time.Time `toml:"failed_at"`
}

// Load reads a cache from the TOML file at path. A missing file yields an
// empty cache.
func Load(path string) (*Cache, error) {
	c := New()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading failure cache: %w", err)
	}

	var sf stateFile
	if err := toml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing failure cache: %w", err)
	}

	for _, f := range sf.Failures {
		c.records[f.Shader] = Record{
			Shader: f.Shader,
			Effective: stale.Effective{
				Time:      time.Unix(0, f.TimeNanos),
				Unbounded: f.Unbounded,
			},
			Entry:    f.Entry,
			FailedAt: f.FailedAt,
		}
	}
	return c, nil
}

// Save writes the cache to path atomically (write temp + rename) and clears
// the dirty flag.
func (c *Cache) Save(path string) error {
	sf := stateFile{Version: 1}
	for _, r := range c.Records() {
		sf.Failures = append(sf.Failures, failureEntry{
			Shader:    r.Shader,
			Entry:     r.Entry,
			TimeNanos: r.Effective.Time.UnixNano(),
			Unbounded: r.Effective.Unbounded,
			FailedAt:  r.FailedAt,
		})
	}

	data, err := toml.Marshal(sf)
	if err != nil {
		return fmt.Errorf("marshaling failure cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating failure cache dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp failure cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming failure cache: %w", err)
	}

	c.dirty = false
	return nil
}
