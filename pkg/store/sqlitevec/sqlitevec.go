// Package sqlitevec provides the on-disk store backend: SQLite with the
// sqlite-vec extension, one database file per storage root, one vec0 virtual
// table per document.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/papervec/papervec/pkg/store"
)

// DBFileName is the SQLite database file created inside the storage root.
const DBFileName = "papervec.db"

// Store implements store.Store on SQLite + sqlite-vec. The value holds only
// the storage root and a logger; every operation opens its own connection,
// so the same root must be supplied for all calls of one logical session.
type Store struct {
	root   string
	logger *zap.Logger
}

// Config holds configuration for the sqlite-vec store.
type Config struct {
	// Root is the storage root directory. The database file lives inside
	// it and is created on first use.
	Root string
}

// New creates a sqlite-vec store for the given root.
func New(c Config, logger *zap.Logger) (*Store, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.Root == "" {
		return nil, fmt.Errorf("storage root is required")
	}

	return &Store{root: c.Root, logger: logger}, nil
}

// open creates the storage root if needed and opens a connection against it.
// Callers own the returned handle and must close it; there is no shared
// cached handle across calls.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating storage root %s: %v", store.ErrConnection, s.root, err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(s.root, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("%w: opening database under %s: %v", store.ErrConnection, s.root, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: reaching database under %s: %v", store.ErrConnection, s.root, err)
	}

	return db, nil
}

// Initialize verifies the root is reachable and sqlite-vec is loaded.
func (s *Store) Initialize(ctx context.Context) (string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	var vecVersion string
	if err := db.QueryRowContext(ctx, "SELECT vec_version()").Scan(&vecVersion); err != nil {
		return "", fmt.Errorf("%w: sqlite-vec not available under %s: %v", store.ErrConnection, s.root, err)
	}

	s.logger.Info("vector store initialized",
		zap.String("root", s.root),
		zap.String("vec_version", vecVersion),
	)

	return fmt.Sprintf("vector store initialized at %s (sqlite-vec %s)", s.root, vecVersion), nil
}

// AddChunks replaces the document's table wholesale: the previous table, if
// any, is dropped (a missing table is a no-op, unlike DeleteDocument), a new
// vec0 table is created from the batch schema, and all rows are inserted in
// one transaction.
func (s *Store) AddChunks(ctx context.Context, documentID string, chunks []store.Chunk) (int, error) {
	batch, err := store.EncodeBatch(chunks)
	if err != nil {
		return 0, fmt.Errorf("encoding batch for document %s: %w", documentID, err)
	}

	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	table := store.TableName(documentID)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction for %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, table)); err != nil {
		return 0, fmt.Errorf("dropping previous table %s: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, createTableSQL(table, batch.Dimensions())); err != nil {
		return 0, fmt.Errorf("creating table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %q (id, text, vector, chunk_index, text_length) VALUES (?, ?, ?, ?, ?)`, table))
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < batch.NumRows(); i++ {
		if _, err := stmt.ExecContext(ctx,
			batch.IDs[i],
			batch.Texts[i],
			serializeFloat32(batch.Vector(i)),
			batch.ChunkIndexes[i],
			batch.TextLengths[i],
		); err != nil {
			return 0, fmt.Errorf("inserting chunk %s into %s: %w", batch.IDs[i], table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing table %s: %w", table, err)
	}

	s.logger.Debug("wrote document table",
		zap.String("table", table),
		zap.Int("rows", batch.NumRows()),
		zap.Int("dimensions", batch.Dimensions()),
	)

	return batch.NumRows(), nil
}

// Search runs a KNN query against the document's table and maps each row to
// a SearchResult, preserving the backend's ascending-distance order.
func (s *Store) Search(ctx context.Context, documentID string, query []float32, topK int) ([]store.SearchResult, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	table := store.TableName(documentID)

	dim, err := tableDimensions(ctx, db, table)
	if err != nil {
		return nil, err
	}

	if len(query) != dim {
		return nil, fmt.Errorf("%w: query vector length %d does not match table %s dimensionality %d",
			store.ErrSchema, len(query), table, dim)
	}

	if topK <= 0 {
		return []store.SearchResult{}, nil
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, text, distance
		FROM %q
		WHERE vector MATCH ?
			AND k = ?
		ORDER BY distance
	`, table), serializeFloat32(query), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: searching table %s: %v", store.ErrQuery, table, err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var distance float64
		if err := rows.Scan(&r.ID, &r.Text, &distance); err != nil {
			return nil, fmt.Errorf("%w: scanning result from %s: %v", store.ErrQuery, table, err)
		}

		r.Distance = float32(distance)
		r.Score = store.ScoreFromDistance(r.Distance)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating results from %s: %v", store.ErrQuery, table, err)
	}

	s.logger.Debug("searched document table",
		zap.String("table", table),
		zap.Int("top_k", topK),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// HasDocument reports whether the document's table exists. A missing table
// is false, never an error.
func (s *Store) HasDocument(ctx context.Context, documentID string) (bool, error) {
	db, err := s.open(ctx)
	if err != nil {
		return false, err
	}
	defer db.Close()

	return tableExists(ctx, db, store.TableName(documentID))
}

// DeleteDocument drops the document's table. Missing table is ErrNotFound,
// asymmetric with AddChunks' swallowed overwrite drop.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	table := store.TableName(documentID)

	exists, err := tableExists(ctx, db, table)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: document %s (table %s)", store.ErrNotFound, documentID, table)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE %q`, table)); err != nil {
		return "", fmt.Errorf("dropping table %s: %w", table, err)
	}

	s.logger.Debug("deleted document table", zap.String("table", table))

	return fmt.Sprintf("deleted table %s", table), nil
}

// ClearAll drops every document table under the root. A failed drop aborts
// the sweep and reports the table that failed.
func (s *Store) ClearAll(ctx context.Context) (string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	tables, err := listDocumentTables(ctx, db)
	if err != nil {
		return "", err
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE %q`, table)); err != nil {
			return "", fmt.Errorf("dropping table %s: %w", table, err)
		}
	}

	s.logger.Debug("cleared document tables", zap.Int("count", len(tables)))

	return fmt.Sprintf("cleared %d document tables", len(tables)), nil
}

// Count returns the document table's row count. Missing table is ErrNotFound.
func (s *Store) Count(ctx context.Context, documentID string) (int64, error) {
	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	table := store.TableName(documentID)

	exists, err := tableExists(ctx, db, table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: document %s (table %s)", store.ErrNotFound, documentID, table)
	}

	var count int64
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting rows of %s: %w", table, err)
	}

	return count, nil
}

// createTableSQL renders the vec0 DDL for one document table. Column order
// matches store.NewSchema: id, text, vector, chunk_index, text_length. The
// text and scalar columns are auxiliary (+) since they are never filtered on.
func createTableSQL(table string, dim int) string {
	return fmt.Sprintf(`CREATE VIRTUAL TABLE %q USING vec0(
		id TEXT,
		+text TEXT,
		vector float[%d] distance_metric=l2,
		+chunk_index INTEGER,
		+text_length INTEGER
	)`, table, dim)
}

var vectorWidthPattern = regexp.MustCompile(`float\[(\d+)\]`)

// expectedColumns are the declared column fragments every document table's
// DDL must carry. sqlite_master stores the CREATE statement verbatim, so a
// substring check verifies the written layout is the layout read back.
var expectedColumns = []string{"id TEXT", "+text TEXT", "+chunk_index INTEGER", "+text_length INTEGER"}

// tableDimensions returns the fixed vector width declared by the document
// table, verifying the rest of the five-column layout along the way. A
// missing table is ErrNotFound; a layout drift is ErrSchema, not a coercion.
func tableDimensions(ctx context.Context, db *sql.DB, table string) (int, error) {
	var createSQL string
	err := db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&createSQL)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: table %s", store.ErrNotFound, table)
	}
	if err != nil {
		return 0, fmt.Errorf("reading catalog entry for %s: %w", table, err)
	}

	for _, col := range expectedColumns {
		if !strings.Contains(createSQL, col) {
			return 0, fmt.Errorf("%w: table %s is missing declared column %q", store.ErrSchema, table, col)
		}
	}

	m := vectorWidthPattern.FindStringSubmatch(createSQL)
	if m == nil {
		return 0, fmt.Errorf("%w: table %s has no fixed-width vector column", store.ErrSchema, table)
	}

	dim, err := strconv.Atoi(m[1])
	if err != nil || dim <= 0 {
		return 0, fmt.Errorf("%w: table %s declares invalid vector width %q", store.ErrSchema, table, m[1])
	}

	return dim, nil
}

// tableExists reports whether the named vec0 table is present. The VIRTUAL
// filter keeps vec0 shadow tables (doc_x_chunks, doc_x_rowids, ...) out.
func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type = 'table'
			AND name = ?
			AND sql LIKE 'CREATE VIRTUAL TABLE%'
	`, table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("listing tables: %w", err)
	}

	return count > 0, nil
}

// listDocumentTables returns the names of all document tables in the root.
// O(number of tables); document counts are small in the target deployment.
func listDocumentTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
			AND name LIKE 'doc\_%' ESCAPE '\'
			AND sql LIKE 'CREATE VIRTUAL TABLE%'
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating table names: %w", err)
	}

	return tables, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
