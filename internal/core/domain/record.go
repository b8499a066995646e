package domain

import "fmt"

// DefaultCollection is the collection shared by ingestion and retrieval.
const DefaultCollection = "ba_documents"

// Metadata keys written on every record.
const (
	MetaSource      = "source"
	MetaContentType = "content_type"
	MetaElementID   = "element_id"
	MetaPage        = "page"
	MetaSheet       = "sheet"
)

// Chunk is a bounded-length piece of an element's content.
type Chunk struct {
	Source    string
	ElementID string
	Index     int
	Content   string
	Metadata  map[string]string
}

// ChunkID builds the record id {source_file}_{element_id}_{chunk_index}.
func ChunkID(source, elementID string, index int) string {
	return fmt.Sprintf("%s_%s_%d", source, elementID, index)
}

// ID returns the chunk's record id.
func (c Chunk) ID() string {
	return ChunkID(c.Source, c.ElementID, c.Index)
}

// Record is the persisted unit in the vector store.
// Records are immutable once written.
type Record struct {
	ID        string
	Embedding []float32
	Document  string
	Metadata  map[string]string
}

// Collection describes a named set of records and the model that embedded them.
type Collection struct {
	Name       string
	Model      string
	Dimensions int
	Count      int
}
