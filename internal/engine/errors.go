package engine

import "errors"

var (
	// ErrConfiguration reports wiring that could never reach a result:
	// a zero slot window, a multi-select engine with no continue
	// control, or no cancel control combined with nothing selectable.
	// It is a programmer error and is never retried.
	ErrConfiguration = errors.New("engine configuration cannot terminate")

	// ErrUnknownControl is returned by Press for a key that was never
	// bound.
	ErrUnknownControl = errors.New("unknown control key")

	// ErrNotRunning is returned by Await when the engine has not been
	// started.
	ErrNotRunning = errors.New("engine is not running")

	// ErrAlreadyRunning is returned by Start while an interaction is
	// in progress.
	ErrAlreadyRunning = errors.New("engine already running")
)
