package domain

import "errors"

var (
	// ErrIndexNotFound is returned when no persisted index/mapping pair exists.
	ErrIndexNotFound = errors.New("no index files found")

	// ErrDimensionMismatch is returned when a vector's width disagrees with the
	// configured embedding dimension. It aborts the whole build.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyCorpus is returned when a build loads zero vectors.
	ErrEmptyCorpus = errors.New("no valid embeddings found")
)
