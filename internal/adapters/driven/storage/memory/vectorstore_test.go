package memory

import (
	"testing"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/storagetest"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

func TestVectorStore_Contract(t *testing.T) {
	storagetest.Run(t, func(_ *testing.T, _ string) driven.VectorStore {
		return NewVectorStore()
	}, false)
}
