package bodies

import "errors"

var (
	// ErrNoManifest is returned when the planet manifest file does not exist.
	ErrNoManifest = errors.New("no planet manifest")
	// ErrEmptyName is returned for a category or task title that is blank
	// after trimming.
	ErrEmptyName = errors.New("empty name")
	// ErrUnknownCategory is returned when removing a category nothing refers to.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrTaskNotFound is returned when completing a task id that does not exist.
	ErrTaskNotFound = errors.New("task not found")
)
