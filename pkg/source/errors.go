package source

import "errors"

// Sentinel failures shared by all source adapters. Adapters wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is while
// the log line keeps the adapter-specific detail.
var (
	// ErrUnavailable means the adapter could not run at all on this system.
	ErrUnavailable = errors.New("source unavailable")

	// ErrPermissionDenied means the target refused access. Distinguished so
	// the surrounding product can prompt the user once instead of retrying.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTargetNotRunning means the automation target is not running.
	ErrTargetNotRunning = errors.New("target not running")

	// ErrNotScriptable means the target is running but does not answer the
	// automation protocol.
	ErrNotScriptable = errors.New("target not scriptable")

	// ErrTimeout means a bounded external call ran out of time.
	ErrTimeout = errors.New("source timed out")
)
