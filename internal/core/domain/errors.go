package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested source or chunk does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates an illegal source status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAcquisition indicates no content could be obtained for a source
	// (clone failure, unreadable working area). Fatal to one ingest call.
	ErrAcquisition = errors.New("acquisition failed")

	// ErrEmbedding indicates the embedding model is unavailable or the
	// input is invalid. No chunk is persisted without its vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrPersistence indicates the atomic chunk write failed.
	ErrPersistence = errors.New("persistence failed")

	// ErrDimensionMismatch indicates a vector does not match the corpus dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// FetchError describes why a single document was skipped during acquisition.
// It is recorded on an ItemResult and never aborts a batch.
type FetchError struct {
	// Locator is the URL or path that failed.
	Locator string

	// StatusCode is the HTTP status, zero when the request never completed.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Locator, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}
