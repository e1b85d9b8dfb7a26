package descriptor

import "go.trai.ch/zerr"

var (
	// ErrInvalidDescriptor is returned when the descriptor fails validation.
	ErrInvalidDescriptor = zerr.New("invalid build descriptor")

	// ErrEntryNotFound is returned when a declared entry path or pattern matches no file.
	ErrEntryNotFound = zerr.New("entry point not found")
)
