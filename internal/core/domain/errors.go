package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotInitialized indicates a component was used before its setup
	// completed. Recoverable by retrying after initialization.
	ErrNotInitialized = errors.New("not initialized")

	// Model lifecycle errors. These are surfaced to callers verbatim,
	// never silently substituted with a different model.

	// ErrNotInstalled indicates the requested model artifact is not
	// present on disk.
	ErrNotInstalled = errors.New("model not installed")

	// ErrModelUnavailable indicates a required model could not be
	// acquired or its provider failed.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInsufficientMemory indicates a model load would exceed the RAM
	// budget and no evictable model can free enough headroom.
	ErrInsufficientMemory = errors.New("insufficient memory for model")

	// ErrModelInUse indicates a model cannot be deleted or unloaded
	// because a caller still holds it.
	ErrModelInUse = errors.New("model in use")

	// Query errors.

	// ErrDimensionMismatch indicates a stored embedding disagrees with
	// the query embedding's dimension. Offending chunks are skipped
	// from results rather than aborting the query.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrBusy indicates a query is already in flight. The caller may
	// retry once the active query completes.
	ErrBusy = errors.New("query already in progress")

	// ErrCancelled indicates a query was cancelled mid-flight. Partial
	// output is discarded and no citations are emitted.
	ErrCancelled = errors.New("query cancelled")
)
