package vocab

import "errors"

var (
	// ErrNilRepository indicates a nil vocabulary repository was supplied.
	ErrNilRepository = errors.New("vocab: repository cannot be nil")

	// ErrNilEmbedder indicates a nil embedder was supplied.
	ErrNilEmbedder = errors.New("vocab: embedder cannot be nil")

	// ErrEmptyTerm indicates an empty search term.
	ErrEmptyTerm = errors.New("vocab: term cannot be empty")
)
