package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/orbit"
)

func TestRootCmd_SubcommandsRegistered(t *testing.T) {
	t.Parallel()

	want := []string{"layout", "slots", "tui", "task", "category", "export", "telemetry"}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("expected %q subcommand to be registered on rootCmd", name)
		}
	}
}

func TestSubcommandFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd  string
		flag string
	}{
		{"layout", "from"},
		{"layout", "width"},
		{"layout", "height"},
		{"layout", "json"},
		{"layout", "legacy"},
		{"layout", "seed"},
		{"slots", "json"},
		{"slots", "width"},
		{"tui", "from"},
		{"export", "output"},
		{"telemetry", "session"},
		{"telemetry", "follow"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			t.Parallel()
			c, _, err := rootCmd.Find([]string{tt.cmd})
			if err != nil {
				t.Fatalf("find %s: %v", tt.cmd, err)
			}
			if c.Flags().Lookup(tt.flag) == nil {
				t.Errorf("expected flag %q on %s", tt.flag, tt.cmd)
			}
		})
	}
}

func TestTaskCmd_Subcommands(t *testing.T) {
	t.Parallel()

	for _, path := range [][]string{
		{"task", "add"},
		{"task", "list"},
		{"task", "done"},
		{"task", "launch"},
		{"category", "add"},
		{"planet", "rm"},
		{"category", "list"},
	} {
		c, _, err := rootCmd.Find(path)
		if err != nil {
			t.Errorf("find %v: %v", path, err)
			continue
		}
		if c == rootCmd || c.RunE == nil {
			t.Errorf("%v did not resolve to a runnable command", path)
		}
	}
}

func TestTUICmd_RequiresTTY(t *testing.T) {
	t.Parallel()

	if isStderrTTY() {
		t.Skip("stderr is a terminal")
	}
	if err := runTUI(tuiCmd, nil); !errors.Is(err, errNoTTY) {
		t.Errorf("runTUI() error = %v, want errNoTTY", err)
	}
}

func TestLayoutEntries_FromArgs(t *testing.T) {
	t.Parallel()

	got, err := layoutEntries(layoutCmd, config.Config{}, []string{"home", " work ", "home", ""})
	if err != nil {
		t.Fatal(err)
	}
	want := []bodies.Entry{{Name: "home"}, {Name: "work"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layoutEntries mismatch (-want +got):\n%s", diff)
	}
}

func TestLegacyLayout(t *testing.T) {
	// Not parallel: config.Load registers viper defaults.

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Seed = 7
	vp := orbit.Size{Width: 1280, Height: 800}
	entries := []bodies.Entry{{Name: "a"}, {Name: "b", Completed: 4}, {Name: "c"}}

	out := legacyLayout(cfg, vp, entries, nil)

	if len(out.Placements) != 3 {
		t.Fatalf("placements = %d, want 3", len(out.Placements))
	}
	if len(out.Positions) != 3 {
		t.Fatalf("positions = %d, want 3", len(out.Positions))
	}
	if out.Anchor != cfg.SunGeometry().Anchor(vp) {
		t.Errorf("anchor = %v, want %v", out.Anchor, cfg.SunGeometry().Anchor(vp))
	}
	for _, name := range []orbit.Body{"a", "b", "c"} {
		if _, ok := out.Positions[name]; !ok {
			t.Errorf("missing position for %s", name)
		}
	}

	again := legacyLayout(cfg, vp, entries, nil)
	if diff := cmp.Diff(out.Positions, again.Positions); diff != "" {
		t.Errorf("same seed gave different positions (-first +second):\n%s", diff)
	}
}

func TestRunSlots_JSON(t *testing.T) {
	// Not parallel: modifies shared slotsCmd flag and output state.
	var buf bytes.Buffer
	slotsCmd.SetOut(&buf)
	defer slotsCmd.SetOut(nil)
	if err := slotsCmd.Flags().Set("json", "true"); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = slotsCmd.Flags().Set("json", "false") }()

	if err := runSlots(slotsCmd, nil); err != nil {
		t.Fatalf("runSlots: %v", err)
	}

	var out struct {
		Viewport orbit.Size `json:"viewport"`
		Slots    []struct {
			Orbit int    `json:"orbit"`
			Body  string `json:"body"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Viewport != (orbit.Size{Width: 1280, Height: 800}) {
		t.Errorf("viewport = %v", out.Viewport)
	}
	if len(out.Slots) != 18 {
		t.Errorf("slots = %d, want 18", len(out.Slots))
	}
	for _, s := range out.Slots {
		if s.Body != "" {
			t.Errorf("fresh grid has occupied slot: %+v", s)
		}
	}
}

func TestPrintEvent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC).Format(time.RFC3339Nano)
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "body and data",
			line: `{"ts":"` + ts + `","kind":"slot_moved","body":"home","data":{"to":3,"from":1}}`,
			want: "[14:05:09] slot_moved body=home from=1 to=3\n",
		},
		{
			name: "kind only",
			line: `{"ts":"` + ts + `","kind":"session_start"}`,
			want: "[14:05:09] session_start\n",
		},
		{
			name: "non-object data",
			line: `{"ts":"` + ts + `","kind":"sync","data":["a","b"]}`,
			want: "[14:05:09] sync [\"a\",\"b\"]\n",
		},
		{
			name: "garbage",
			line: "not json",
			want: "??? not json\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			printEvent(&buf, tt.line)
			if got := buf.String(); got != tt.want {
				t.Errorf("printEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDataMap_SortedKeys(t *testing.T) {
	t.Parallel()

	got := formatDataMap(map[string]any{"b": 2, "a": "x", "c": true})
	if want := "a=x b=2 c=true"; got != want {
		t.Errorf("formatDataMap() = %q, want %q", got, want)
	}
}

func TestResolveTelemetryPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := filepath.Join(dir, "old.jsonl")
	recent := filepath.Join(dir, "recent.jsonl")
	for _, p := range []string{old, recent, filepath.Join(dir, "notes.txt")} {
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	t.Run("newest", func(t *testing.T) {
		t.Parallel()
		got, err := resolveTelemetryPath(dir, "")
		if err != nil {
			t.Fatal(err)
		}
		if got != recent {
			t.Errorf("got %s, want %s", got, recent)
		}
	})

	t.Run("explicit session", func(t *testing.T) {
		t.Parallel()
		got, err := resolveTelemetryPath(dir, "old")
		if err != nil {
			t.Fatal(err)
		}
		if got != old {
			t.Errorf("got %s, want %s", got, old)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		t.Parallel()
		_, err := resolveTelemetryPath(dir, "nope")
		if err == nil || !strings.Contains(err.Error(), `"nope"`) {
			t.Errorf("error = %v, want mention of session", err)
		}
	})

	t.Run("empty dir", func(t *testing.T) {
		t.Parallel()
		_, err := resolveTelemetryPath(t.TempDir(), "")
		if err == nil || !strings.Contains(err.Error(), "no JSONL files") {
			t.Errorf("error = %v, want no JSONL files", err)
		}
	})

	t.Run("missing dir", func(t *testing.T) {
		t.Parallel()
		if _, err := resolveTelemetryPath(filepath.Join(dir, "absent"), ""); err == nil {
			t.Error("expected error for missing dir")
		}
	})
}

func TestPrintLines_SkipsBlank(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	in := "not json\n\n   \nalso not"
	printLines(&buf, bufio.NewReader(strings.NewReader(in)))
	if got, want := buf.String(), "??? not json\n??? also not\n"; got != want {
		t.Errorf("printLines() = %q, want %q", got, want)
	}
}
