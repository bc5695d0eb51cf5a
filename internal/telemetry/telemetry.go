// Package telemetry records layout sessions as a JSONL event stream. Every
// slot claim, release, move and swap, every drag gesture and every resize is
// written as one JSON object per line, so a session can be replayed or
// tailed while it runs.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of telemetry event.
const (
	KindSessionStart  = "session_start"
	KindSync          = "sync"
	KindSlotClaimed   = "slot_claimed"
	KindSlotReleased  = "slot_released"
	KindSlotMoved     = "slot_moved"
	KindSlotSwapped   = "slot_swapped"
	KindSlotsReset    = "slots_reset"
	KindGridFull      = "grid_full"
	KindResize        = "resize"
	KindDragStart     = "drag_start"
	KindDragEnd       = "drag_end"
	KindDragCancel    = "drag_cancel"
	KindLegacyOverlap = "legacy_overlap"
)

// Event is a single telemetry record: a timestamp, a kind tag, the session
// it belongs to, the body involved (if any) and arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Session   string    `json:"session,omitempty"`
	Body      string    `json:"body,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file    *os.File
	enc     *json.Encoder
	session string
	mu      sync.Mutex
}

// NewEmitter creates an Emitter that appends JSONL events to the file at
// path, creating it if needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// NewSessionEmitter creates dir if needed and opens <dir>/<session>.jsonl.
// Events emitted without a session are stamped with this one.
func NewSessionEmitter(dir, session string) (*Emitter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: create %s: %w", dir, err)
	}
	em, err := NewEmitter(filepath.Join(dir, session+".jsonl"))
	if err != nil {
		return nil, err
	}
	em.session = session
	return em, nil
}

// Session returns the session stamped on events, or "" for a nil emitter.
func (e *Emitter) Session() string {
	if e == nil {
		return ""
	}
	return e.session
}

// Emit writes a single event. A zero Timestamp is set to now. Calling Emit
// on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	if evt.Session == "" {
		evt.Session = e.session
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
