package slots

import (
	"errors"

	"github.com/papapumpkin/planit/internal/orbit"
)

// Sentinel errors for registry operations.
var (
	// ErrSlotAlreadyOccupied indicates a claim on a slot held by another body.
	ErrSlotAlreadyOccupied = errors.New("slot already occupied")
	// ErrBodyAlreadyPlaced indicates a claim by a body that holds a different slot.
	ErrBodyAlreadyPlaced = errors.New("body already placed")
	// ErrEmptyBody indicates an empty body name.
	ErrEmptyBody = errors.New("empty body name")
	// ErrInvalidSlotIndex indicates an index outside 1..Capacity.
	ErrInvalidSlotIndex = orbit.ErrInvalidSlotIndex
)
