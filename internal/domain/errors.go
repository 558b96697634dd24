package domain

import "errors"

var (
	// ErrStoreUnavailable signals that the document store could not be
	// reached or queried (connection-class failure).
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrCorruptDocument signals a malformed row in the document store
	// (parse-class failure). A load that hits one fails as a whole so the
	// content maps and the vector matrix never go out of alignment.
	ErrCorruptDocument = errors.New("corrupt document row")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)
