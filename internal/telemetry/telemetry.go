// Package telemetry provides a JSONL event stream for recording what a
// watch session does. Every pass, compile, header write and scan warning is
// recorded as a structured JSON event tagged with the session that produced
// it, so runs can be audited and compared after the fact.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of telemetry event.
const (
	KindPassStart     = "pass_start"
	KindPassDone      = "pass_done"
	KindCompileStart  = "compile_start"
	KindCompileDone   = "compile_done"
	KindCompileFailed = "compile_failed"
	KindHeaderWritten = "header_written"
	KindShaderAdded   = "shader_added"
	KindShaderRemoved = "shader_removed"
	KindScanWarning   = "scan_warning"
)

// Event represents a single telemetry record. Each event carries a timestamp,
// a kind tag, the session identifier, and optionally the shader it concerns
// along with arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	SessionID string    `json:"session,omitempty"`
	Shader    string    `json:"shader,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file    *os.File
	enc     *json.Encoder
	session string
	mu      sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
// Each Emitter gets a fresh session ID that is stamped on every event.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file:    f,
		enc:     json.NewEncoder(f),
		session: uuid.NewString(),
	}, nil
}

// SessionID returns the identifier stamped on this emitter's events, or the
// empty string for a nil Emitter.
func (e *Emitter) SessionID() string {
	if e == nil {
		return ""
	}
	return e.session
}

// Emit writes a single event to the JSONL file. A zero Timestamp is set to
// the current time and an empty SessionID to the emitter's session.
// Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	if evt.SessionID == "" {
		evt.SessionID = e.session
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
