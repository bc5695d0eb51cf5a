package tui

import "github.com/papapumpkin/planit/internal/bodies"

// MsgEntries carries a fresh category set, from a manifest reload or a
// store query. A non-nil Err leaves the current layout untouched.
type MsgEntries struct {
	Entries []bodies.Entry
	Err     error
}
