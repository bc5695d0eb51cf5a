package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// readEvents decodes every line of the JSONL file at path.
func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var out []Event
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var evt Event
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Fatalf("line %d is not JSON: %v\n%s", i, err, line)
		}
		out = append(out, evt)
	}
	return out
}

func TestNewEmitter(t *testing.T) {
	t.Parallel()

	t.Run("creates file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "layout.jsonl")
		em, err := NewEmitter(path)
		if err != nil {
			t.Fatalf("NewEmitter(%q): %v", path, err)
		}
		defer em.Close()
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file not created: %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		_, err := NewEmitter(filepath.Join(t.TempDir(), "absent", "layout.jsonl"))
		if err == nil || !strings.Contains(err.Error(), "telemetry: open") {
			t.Errorf("error = %v, want wrapped open error", err)
		}
	})
}

func TestEmit_RoundTripsSwap(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "layout.jsonl")
	em, err := NewEmitter(path)
	if err != nil {
		t.Fatal(err)
	}

	t0 := time.Date(2026, 5, 4, 21, 0, 0, 0, time.UTC)
	in := []Event{
		{Timestamp: t0, Kind: KindDragStart, Body: "study", Data: map[string]any{"origin": 3.0}},
		{Timestamp: t0.Add(time.Second), Kind: KindSlotSwapped, Body: "study", Data: map[string]any{"from": 3.0, "to": 7.0, "displaced": "chores"}},
		{Timestamp: t0.Add(2 * time.Second), Kind: KindDragEnd, Body: "study"},
	}
	for _, evt := range in {
		if err := em.Emit(evt); err != nil {
			t.Fatalf("Emit(%s): %v", evt.Kind, err)
		}
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if diff := cmp.Diff(in, readEvents(t, path)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_ConcurrentClaims(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "claims.jsonl")
	em, err := NewEmitter(path)
	if err != nil {
		t.Fatal(err)
	}

	const n = 64
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := em.Emit(Event{Kind: KindSlotClaimed, Data: map[string]int{"slot": i%18 + 1}}); err != nil {
				t.Errorf("Emit: %v", err)
			}
		}()
	}
	wg.Wait()
	if err := em.Close(); err != nil {
		t.Fatal(err)
	}

	got := readEvents(t, path)
	if len(got) != n {
		t.Fatalf("got %d events, want %d", len(got), n)
	}
	for _, evt := range got {
		if evt.Kind != KindSlotClaimed || evt.Timestamp.IsZero() {
			t.Errorf("bad event %+v", evt)
		}
	}
}

func TestEmit_AppendsAcrossEmitters(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "append.jsonl")

	for _, kind := range []string{KindSessionStart, KindResize} {
		em, err := NewEmitter(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := em.Emit(Event{Kind: kind}); err != nil {
			t.Fatal(err)
		}
		em.Close()
	}

	got := readEvents(t, path)
	if len(got) != 2 || got[0].Kind != KindSessionStart || got[1].Kind != KindResize {
		t.Errorf("events = %+v, want session_start then resize", got)
	}
}

func TestNilEmitter(t *testing.T) {
	t.Parallel()
	var em *Emitter

	if err := em.Emit(Event{Kind: KindGridFull}); err != nil {
		t.Errorf("nil Emit: %v", err)
	}
	if s := em.Session(); s != "" {
		t.Errorf("nil Session = %q", s)
	}
	if err := em.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestKinds_Distinct(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for _, k := range []string{
		KindSessionStart, KindSync, KindSlotClaimed, KindSlotReleased,
		KindSlotMoved, KindSlotSwapped, KindSlotsReset, KindGridFull,
		KindResize, KindDragStart, KindDragEnd, KindDragCancel, KindLegacyOverlap,
	} {
		if k == "" || seen[k] {
			t.Errorf("kind %q is empty or repeated", k)
		}
		seen[k] = true
	}
}

func TestEvent_OmitsEmptyFields(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(Event{Timestamp: time.Unix(0, 0).UTC(), Kind: KindResize})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"ts":"1970-01-01T00:00:00Z","kind":"resize"}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestSessionEmitter_StampsSession(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), ".planit", "telemetry")
	id := NewSessionID()
	if id == "" || id == NewSessionID() {
		t.Fatalf("NewSessionID not unique: %q", id)
	}

	em, err := NewSessionEmitter(dir, id)
	if err != nil {
		t.Fatalf("NewSessionEmitter: %v", err)
	}
	if em.Session() != id {
		t.Errorf("Session() = %q, want %q", em.Session(), id)
	}
	for _, evt := range []Event{{Kind: KindSync}, {Kind: KindSync, Session: "replayed"}} {
		if err := em.Emit(evt); err != nil {
			t.Fatal(err)
		}
	}
	em.Close()

	got := readEvents(t, filepath.Join(dir, id+".jsonl"))
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Session != id || got[1].Session != "replayed" {
		t.Errorf("sessions = %q, %q; want %q, replayed", got[0].Session, got[1].Session, id)
	}
}
