package store

import "errors"

var (
	// ErrNotFound is returned when an operation targets a document table
	// that does not exist.
	ErrNotFound = errors.New("document table not found")

	// ErrConnection is returned when the storage root cannot be opened.
	ErrConnection = errors.New("store connection failed")

	// ErrSchema is returned for a malformed batch, a vector dimensionality
	// mismatch, or a table whose layout does not match the expected schema.
	ErrSchema = errors.New("schema mismatch")

	// ErrQuery is returned when the backend rejects a similarity query.
	ErrQuery = errors.New("vector query failed")
)
