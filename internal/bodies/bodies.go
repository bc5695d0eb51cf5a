// Package bodies supplies the live set of bodies the layout engine places.
//
// A body is a task category. Categories come either from a TOML manifest
// (planets.toml) that can be watched for edits, or from a SQLite store of
// categories and tasks. Both implement Source.
package bodies

import (
	"context"
	"strings"

	"github.com/papapumpkin/planit/internal/orbit"
)

// Entry is one category together with how many of its tasks are done. The
// completed count drives the rendered planet size.
type Entry struct {
	Name      string `json:"name" toml:"name"`
	Completed int    `json:"completed" toml:"completed"`
}

// Source yields the current category set.
type Source interface {
	Entries(ctx context.Context) ([]Entry, error)
}

// Normalize trims names, drops blanks and merges duplicates, summing their
// completed counts. First-seen order is kept.
func Normalize(entries []Entry) []Entry {
	idx := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		if i, ok := idx[name]; ok {
			out[i].Completed += e.Completed
			continue
		}
		idx[name] = len(out)
		out = append(out, Entry{Name: name, Completed: e.Completed})
	}
	return out
}

// Names returns the bodies of entries, in order.
func Names(entries []Entry) []orbit.Body {
	out := make([]orbit.Body, len(entries))
	for i, e := range entries {
		out[i] = orbit.Body(e.Name)
	}
	return out
}

// Counts indexes completed counts by body.
func Counts(entries []Entry) map[orbit.Body]int {
	out := make(map[orbit.Body]int, len(entries))
	for _, e := range entries {
		out[orbit.Body(e.Name)] = e.Completed
	}
	return out
}
