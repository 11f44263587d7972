// Package store defines the per-document vector store: chunk and result
// types, the Store interface implemented by each backend, table naming, and
// the columnar batch layout shared between backends.
package store

import (
	"context"
	"regexp"
)

// Chunk is one unit of stored content: a passage of text together with its
// embedding and its position within the source document.
type Chunk struct {
	// ID is caller-assigned and unique within one document's table. It is
	// not globally unique.
	ID string

	// Text is the literal stored passage.
	Text string

	// Vector is the embedding. Its length is fixed per table and pinned by
	// the first chunk of the batch that creates the table.
	Vector []float32

	// ChunkIndex is the caller-assigned ordinal position within the source
	// document.
	ChunkIndex int32

	// TextLength is the caller-reported length of Text.
	TextLength int32
}

// SearchResult is the ephemeral output of a similarity query. It is never
// persisted.
type SearchResult struct {
	ID   string
	Text string

	// Score is 1/(1+Distance), in (0, 1]. Higher means more similar, so
	// callers can rank by it directly.
	Score float32

	// Distance is the raw L2 distance reported by the backend.
	Distance float32
}

// Store handles per-document persistence and retrieval of chunk embeddings.
// Every operation connects independently against the configured storage root;
// implementations carry no cross-call state beyond the tables themselves, so
// concurrent writes and deletes against the same document race and the last
// destructive operation wins.
type Store interface {
	// Initialize verifies the storage root is reachable and returns a
	// human-readable confirmation.
	Initialize(ctx context.Context) (string, error)

	// AddChunks replaces the document's table wholesale with the given
	// chunks and returns the number of rows written. An empty chunk list
	// still creates an empty table.
	AddChunks(ctx context.Context, documentID string, chunks []Chunk) (int, error)

	// Search returns at most topK stored chunks ordered ascending by L2
	// distance to the query vector. An empty table yields an empty slice,
	// not an error; a missing table yields ErrNotFound.
	Search(ctx context.Context, documentID string, query []float32, topK int) ([]SearchResult, error)

	// HasDocument reports whether the document's table exists. A missing
	// table is false, not an error.
	HasDocument(ctx context.Context, documentID string) (bool, error)

	// DeleteDocument drops the document's table and returns a
	// confirmation. A missing table is ErrNotFound.
	DeleteDocument(ctx context.Context, documentID string) (string, error)

	// ClearAll drops every document table under the root. It aborts on the
	// first failed drop, naming the table that failed.
	ClearAll(ctx context.Context) (string, error)

	// Count returns the number of rows in the document's table. A missing
	// table is ErrNotFound.
	Count(ctx context.Context, documentID string) (int64, error)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// TableName derives the stable table name for a document identifier by
// replacing every non-alphanumeric character with '_' and prefixing "doc_".
// The mapping is not injective: identifiers differing only in punctuation
// collide onto the same table.
func TableName(documentID string) string {
	return "doc_" + nonAlphanumeric.ReplaceAllString(documentID, "_")
}

// ScoreFromDistance maps a raw L2 distance in [0, inf) to a relevance score
// in (0, 1]. The transform is monotonically decreasing in distance, so score
// order always agrees with ascending-distance order.
func ScoreFromDistance(distance float32) float32 {
	return 1.0 / (1.0 + distance)
}
