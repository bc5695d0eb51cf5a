package drag

import "errors"

var (
	// ErrBodyNotPlaced indicates a drag on a body that holds no slot.
	ErrBodyNotPlaced = errors.New("body not placed")
	// ErrAlreadyDragging indicates a pointer-down while a gesture is active.
	ErrAlreadyDragging = errors.New("drag already in progress")
)
