package driven

import "context"

// CorpusFile is a discovered source document.
type CorpusFile struct {
	// Path is the absolute or working-directory relative path.
	Path string

	// Name is the path relative to the corpus root, used in record ids.
	Name string

	Size int64
}

// CorpusSource discovers corpus files.
type CorpusSource interface {
	// List returns files under root matching any pattern, sorted by name.
	List(ctx context.Context, root string, patterns []string) ([]CorpusFile, error)

	// Watch emits files under root that are created or written until ctx is done.
	Watch(ctx context.Context, root string, patterns []string) (<-chan CorpusFile, <-chan error, error)
}
