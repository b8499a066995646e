// Package storage selects a driven.VectorStore backend from settings.
package storage

import (
	"fmt"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// Open returns the configured vector store.
func Open(settings domain.StoreSettings) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.StoreSQLite, "":
		return sqlite.NewStore(settings.DataDir)
	case domain.StoreBolt:
		return bolt.NewStore(settings.DataDir)
	case domain.StoreMemory:
		return memory.NewVectorStore(), nil
	default:
		return nil, fmt.Errorf("%w: store backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}
