package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals a request that failed validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized signals a missing or invalid API key.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmbeddingUnavailable signals that the query embedding could not be generated.
	// This is a hard failure: the pipeline cannot rank without a query vector.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrSearchUnavailable signals that every search signal failed.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrRateLimited signals a rate limit hit on an upstream provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// SignalError wraps ErrSearchUnavailable with the per-signal causes, so
// operators can tell which backend calls failed when the whole search did.
type SignalError struct {
	VectorErr  error
	KeywordErr error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%s: vector: %v; keyword: %v", ErrSearchUnavailable.Error(), e.VectorErr, e.KeywordErr)
}

func (e *SignalError) Unwrap() error { return ErrSearchUnavailable }

// NewSignalError creates a total search failure error from the two signal causes.
func NewSignalError(vectorErr, keywordErr error) error {
	return &SignalError{VectorErr: vectorErr, KeywordErr: keywordErr}
}
