package driving

import (
	"context"
	"time"
)

// IngestService loads a corpus directory into the vector store.
type IngestService interface {
	// Ingest scrapes, chunks, embeds and writes every matching file.
	// Per-file and per-element failures are recorded in the report and do
	// not abort the run. Only setup failures return an error.
	Ingest(ctx context.Context, req IngestRequest) (*IngestReport, error)

	// IngestFile runs the pipeline for a single file.
	IngestFile(ctx context.Context, path, name string) (*FileReport, error)

	// Watch ingests files as they are created or changed until ctx is done.
	Watch(ctx context.Context, req IngestRequest, onFile func(*FileReport)) error
}

// IngestRequest selects the corpus to ingest.
type IngestRequest struct {
	CorpusDir string

	// Patterns are doublestar globs relative to CorpusDir. Empty uses configured defaults.
	Patterns []string

	// Workers is the number of files processed concurrently. Values below 1 mean 1.
	Workers int

	// OnProgress is called after each file completes. It may be called from
	// several goroutines when Workers > 1.
	OnProgress func(done, total int, file *FileReport)
}

// FileReport is the outcome of ingesting one file.
type FileReport struct {
	Name            string
	Elements        int
	ElementsSkipped int
	ElementsFailed  int
	ChunksWritten   int
	Duplicates      int

	// Skipped is set when the file yielded no elements.
	Skipped bool

	// Err joins the scrape failure or every element failure, if any.
	Err error
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	FilesFound      int
	FilesProcessed  int
	FilesSkipped    int
	FilesFailed     int
	ElementsSkipped int
	ElementsFailed  int
	ChunksWritten   int
	Duplicates      int

	// CollectionCount is the record count after the run.
	CollectionCount int

	Files    []*FileReport
	Duration time.Duration
}
