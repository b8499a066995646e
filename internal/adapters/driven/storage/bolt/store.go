// Package bolt provides a driven.VectorStore on a single bbolt file.
//
// Layout: bucket "collections" maps a name to its model and dimension;
// bucket "records" holds one nested bucket per collection mapping record
// id to a JSON {v, d, m} value.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// FileName is the database file inside the data directory.
const FileName = "vectors.bolt"

var (
	bucketCollections = []byte("collections")
	bucketRecords     = []byte("records")
)

type storedCollection struct {
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	CreatedAt  time.Time `json:"created_at"`
}

type storedRecord struct {
	Vector   []float32         `json:"v"`
	Document string            `json:"d"`
	Metadata map[string]string `json:"m,omitempty"`
}

// Store is a bbolt-backed vector store.
type Store struct {
	db   *bbolt.DB
	path string
}

// NewStore opens or creates dataDir/vectors.bolt.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, FileName)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketCollections, bucketRecords} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureCollection creates the collection if missing.
func (s *Store) EnsureCollection(ctx context.Context, name, model string, dimensions int) (*domain.Collection, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		cols := tx.Bucket(bucketCollections)
		if cols.Get([]byte(name)) != nil {
			return nil
		}
		data, err := json.Marshal(storedCollection{Model: model, Dimensions: dimensions, CreatedAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		if err := cols.Put([]byte(name), data); err != nil {
			return err
		}
		_, err = tx.Bucket(bucketRecords).CreateBucketIfNotExists([]byte(name))
		return err
	})
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
func (s *Store) Collection(_ context.Context, name string) (*domain.Collection, error) {
	var c *domain.Collection
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		c, err = readCollection(tx, name)
		return err
	})
	return c, err
}

// Write inserts one record.
func (s *Store) Write(_ context.Context, collection string, rec domain.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		c, err := readCollection(tx, collection)
		if err != nil {
			return err
		}
		if len(rec.Embedding) != c.Dimensions {
			return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(rec.Embedding), c.Dimensions)
		}

		b := tx.Bucket(bucketRecords).Bucket([]byte(collection))
		if b.Get([]byte(rec.ID)) != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateID, rec.ID)
		}

		data, err := json.Marshal(storedRecord{Vector: rec.Embedding, Document: rec.Document, Metadata: rec.Metadata})
		if err != nil {
			return fmt.Errorf("marshalling record: %w", err)
		}
		return b.Put([]byte(rec.ID), data)
	})
}

// Query returns up to topK records by ascending cosine distance.
func (s *Store) Query(_ context.Context, collection string, embedding []float32, topK int) ([]domain.RetrievedRecord, error) {
	var candidates []similarity.Candidate

	err := s.db.View(func(tx *bbolt.Tx) error {
		c, err := readCollection(tx, collection)
		if err != nil {
			return err
		}
		if len(embedding) != c.Dimensions {
			return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(embedding), c.Dimensions)
		}

		return tx.Bucket(bucketRecords).Bucket([]byte(collection)).ForEach(func(k, v []byte) error {
			var stored storedRecord
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("decoding record %s: %w", k, err)
			}
			candidates = append(candidates, similarity.Candidate{
				ID:        string(k),
				Embedding: stored.Vector,
				Document:  stored.Document,
				Metadata:  stored.Metadata,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
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

func readCollection(tx *bbolt.Tx, name string) (*domain.Collection, error) {
	data := tx.Bucket(bucketCollections).Get([]byte(name))
	if data == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}

	var stored storedCollection
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decoding collection %s: %w", name, err)
	}

	c := &domain.Collection{Name: name, Model: stored.Model, Dimensions: stored.Dimensions}
	if b := tx.Bucket(bucketRecords).Bucket([]byte(name)); b != nil {
		c.Count = b.Stats().KeyN
	}
	return c, nil
}
