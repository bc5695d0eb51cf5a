package orbit

import "errors"

var (
	// ErrInvalidSlotIndex indicates a slot index outside 1..N.
	ErrInvalidSlotIndex = errors.New("invalid slot index")
	// ErrInvalidTable indicates an orbit table that cannot produce slots.
	ErrInvalidTable = errors.New("invalid orbit table")
)
