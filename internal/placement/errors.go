package placement

import "errors"

// ErrGridFull indicates auto-placement found no free slot.
var ErrGridFull = errors.New("grid full")
