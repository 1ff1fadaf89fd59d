package domain

import "errors"

var (
	// ErrNotFound signals a missing record for a point lookup.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals malformed caller input, such as an unparseable date.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable signals a record store transport or driver failure.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrEmbeddingService signals an embedding provider failure.
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrSearchUnavailable signals a search index failure.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrVectorizerUnavailable signals that the index has no server-side
	// query vectorizer bound. Raised at query construction, before any
	// index request, so the caller can fall back to app-side embedding.
	ErrVectorizerUnavailable = errors.New("server-side vectorizer unavailable")
)
