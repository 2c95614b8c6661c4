package ingest

import "errors"

var (
	// ErrListingRepositoryRequired is returned when a listing repository is not provided.
	ErrListingRepositoryRequired = errors.New("listing repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrDedupeEngineRequired is returned when a dedupe engine is not provided.
	ErrDedupeEngineRequired = errors.New("dedupe engine required")

	// ErrVocabularyIndexRequired is returned when a vocabulary index is not provided.
	ErrVocabularyIndexRequired = errors.New("vocabulary index required")

	// ErrNoSources is returned when a pipeline is built without sources.
	ErrNoSources = errors.New("at least one source required")

	// ErrMalformedRecord indicates a raw record missing its source identifier.
	ErrMalformedRecord = errors.New("malformed record")
)
