package bodies

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestManifest_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultManifest)
	m := &Manifest{Planets: []Entry{{Name: "study", Completed: 3}, {Name: "clean"}}}
	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
	got, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadManifest_Parse(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultManifest)
	data := `
[[planet]]
name = " cats "
completed = 2

[[planet]]
name = "cats"
completed = 1

[[planet]]
name = "study"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ManifestSource{Path: path}.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	want := []Entry{{Name: "cats", Completed: 3}, {Name: "study"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := LoadManifest(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, ErrNoManifest) {
		t.Errorf("missing file: err = %v, want ErrNoManifest", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[[planet]\nname = "), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadManifest(bad)
	if err == nil || errors.Is(err, ErrNoManifest) {
		t.Errorf("bad file: err = %v, want parse error", err)
	}
}

func TestManifestSource_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ManifestSource{Path: "unused"}.Entries(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
