package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// FileName is the database file inside the data directory.
const FileName = "vectors.db"

// Store is a SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the store in dataDir.
// If dataDir is empty, defaults to ~/.storysmith/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".storysmith", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; parallel ingestion would otherwise race for the lock.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureCollection creates the collection if missing.
func (s *Store) EnsureCollection(ctx context.Context, name, model string, dimensions int) (*domain.Collection, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, model, dimensions, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, model, dimensions, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	c, err := s.Collection(ctx, name)
	if err != nil {
		return nil, err
	}
	if c.Model != model {
		return nil, fmt.Errorf("%w: collection %q uses %q, not %q", domain.ErrModelMismatch, name, c.Model, model)
	}
	if c.Dimensions != dimensions {
		return nil, fmt.Errorf("%w: collection %q has %d dimensions, not %d", domain.ErrDimensionMismatch, name, c.Dimensions, dimensions)
	}
	return c, nil
}

// Collection returns the named collection with its record count.
func (s *Store) Collection(ctx context.Context, name string) (*domain.Collection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT c.name, c.model, c.dimensions,
			(SELECT COUNT(*) FROM records r WHERE r.collection = c.name)
		FROM collections c WHERE c.name = ?
	`, name)

	var c domain.Collection
	if err := row.Scan(&c.Name, &c.Model, &c.Dimensions, &c.Count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	return &c, nil
}

// Write inserts one record. Existing ids are left untouched.
func (s *Store) Write(ctx context.Context, collection string, rec domain.Record) error {
	c, err := s.Collection(ctx, collection)
	if err != nil {
		return err
	}
	if len(rec.Embedding) != c.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(rec.Embedding), c.Dimensions)
	}

	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, document, metadata, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO NOTHING
	`, collection, rec.ID, rec.Document, string(metadataJSON), float32SliceToBytes(rec.Embedding), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking insert: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, rec.ID)
	}
	return nil
}

// Query returns up to topK records by ascending cosine distance.
func (s *Store) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]domain.RetrievedRecord, error) {
	c, err := s.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if len(embedding) != c.Dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(embedding), c.Dimensions)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, metadata, embedding FROM records WHERE collection = ?
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var candidates []similarity.Candidate
	for rows.Next() {
		var cand similarity.Candidate
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&cand.ID, &cand.Document, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if metadataJSON != "" && metadataJSON != "null" {
			if err := json.Unmarshal([]byte(metadataJSON), &cand.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata: %w", err)
			}
		}
		cand.Embedding = bytesToFloat32Slice(blob)
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return similarity.TopK(embedding, candidates, topK), nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	c, err := s.Collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	return c.Count, nil
}

// migrate runs all pending up migrations and records their versions.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
