// Package memory provides an in-process store backend with exact L2 scans.
// It mirrors the sqlite-vec backend's semantics without touching disk; its
// mutex additionally serializes writes against reads, which the on-disk
// backend deliberately does not.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/papervec/papervec/pkg/store"
)

type row struct {
	id         string
	text       string
	vector     []float32
	chunkIndex int32
	textLength int32
}

type table struct {
	dim  int
	rows []row
}

// Store implements store.Store entirely in memory. Tables are keyed by the
// same sanitized names the on-disk backend uses, so the collision behavior
// of punctuation-only id differences is identical.
type Store struct {
	root   string
	logger *zap.Logger

	mu     sync.RWMutex
	tables map[string]*table
}

// Config holds configuration for the in-memory store.
type Config struct {
	// Root is carried for interface parity and surfaced in confirmations;
	// nothing is written under it.
	Root string
}

// New creates an empty in-memory store.
func New(c Config, logger *zap.Logger) (*Store, error) {
	return &Store{
		root:   c.Root,
		logger: logger,
		tables: make(map[string]*table),
	}, nil
}

// Initialize is a no-op beyond the confirmation; there is nothing to reach.
func (s *Store) Initialize(_ context.Context) (string, error) {
	s.logger.Info("in-memory vector store initialized", zap.String("root", s.root))
	return fmt.Sprintf("in-memory vector store ready (root %s)", s.root), nil
}

// AddChunks replaces the document's table wholesale with the encoded batch.
func (s *Store) AddChunks(_ context.Context, documentID string, chunks []store.Chunk) (int, error) {
	batch, err := store.EncodeBatch(chunks)
	if err != nil {
		return 0, fmt.Errorf("encoding batch for document %s: %w", documentID, err)
	}

	t := &table{
		dim:  batch.Dimensions(),
		rows: make([]row, 0, batch.NumRows()),
	}
	for i := 0; i < batch.NumRows(); i++ {
		vec := make([]float32, batch.Dimensions())
		copy(vec, batch.Vector(i))
		t.rows = append(t.rows, row{
			id:         batch.IDs[i],
			text:       batch.Texts[i],
			vector:     vec,
			chunkIndex: batch.ChunkIndexes[i],
			textLength: batch.TextLengths[i],
		})
	}

	name := store.TableName(documentID)

	s.mu.Lock()
	s.tables[name] = t
	s.mu.Unlock()

	s.logger.Debug("wrote document table",
		zap.String("table", name),
		zap.Int("rows", batch.NumRows()),
	)

	return batch.NumRows(), nil
}

// Search scans every row, computes the exact Euclidean distance, and returns
// the topK closest in ascending-distance order.
func (s *Store) Search(_ context.Context, documentID string, query []float32, topK int) ([]store.SearchResult, error) {
	name := store.TableName(documentID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: document %s (table %s)", store.ErrNotFound, documentID, name)
	}

	if len(query) != t.dim {
		return nil, fmt.Errorf("%w: query vector length %d does not match table %s dimensionality %d",
			store.ErrSchema, len(query), name, t.dim)
	}

	if topK <= 0 {
		return []store.SearchResult{}, nil
	}

	results := make([]store.SearchResult, 0, len(t.rows))
	for _, r := range t.rows {
		d := l2Distance(query, r.vector)
		results = append(results, store.SearchResult{
			ID:       r.id,
			Text:     r.text,
			Score:    store.ScoreFromDistance(d),
			Distance: d,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// HasDocument reports table presence; a missing table is false, not an error.
func (s *Store) HasDocument(_ context.Context, documentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tables[store.TableName(documentID)]
	return ok, nil
}

// DeleteDocument drops the table; missing table is ErrNotFound.
func (s *Store) DeleteDocument(_ context.Context, documentID string) (string, error) {
	name := store.TableName(documentID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[name]; !ok {
		return "", fmt.Errorf("%w: document %s (table %s)", store.ErrNotFound, documentID, name)
	}

	delete(s.tables, name)
	return fmt.Sprintf("deleted table %s", name), nil
}

// ClearAll drops every table. In-memory deletes cannot fail partway, so the
// abort-on-first-failure contract is trivially satisfied.
func (s *Store) ClearAll(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tables)
	s.tables = make(map[string]*table)

	return fmt.Sprintf("cleared %d document tables", n), nil
}

// Count returns the table's row count; missing table is ErrNotFound.
func (s *Store) Count(_ context.Context, documentID string) (int64, error) {
	name := store.TableName(documentID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return 0, fmt.Errorf("%w: document %s (table %s)", store.ErrNotFound, documentID, name)
	}

	return int64(len(t.rows)), nil
}

// l2Distance computes the Euclidean distance between two equal-length
// vectors, matching sqlite-vec's l2 metric.
func l2Distance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
