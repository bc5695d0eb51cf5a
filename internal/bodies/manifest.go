package bodies

import (
	"context"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultManifest is the manifest file name used when none is configured.
const DefaultManifest = "planets.toml"

// Manifest is the on-disk planet list:
//
//	[[planet]]
//	name = "study"
//	completed = 3
type Manifest struct {
	Planets []Entry `toml:"planet"`
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoManifest)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// WriteManifest writes m to path through a temporary file so watchers never
// see a half-written manifest.
func WriteManifest(path string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming manifest: %w", err)
	}
	return nil
}

// ManifestSource reads entries from a manifest file on every call.
type ManifestSource struct {
	Path string
}

// Entries loads the manifest and returns its normalized entries.
func (s ManifestSource) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := LoadManifest(s.Path)
	if err != nil {
		return nil, err
	}
	return Normalize(m.Planets), nil
}
