package driven

// Span is one chunk of a larger text, located by rune offsets.
// Consecutive spans overlap by End(previous) - Start(next) runes.
type Span struct {
	Index int
	Start int
	End   int
	Text  string
}

// Chunker splits text into bounded, overlapping spans.
type Chunker interface {
	Split(text string) []Span

	// ChunkSize returns the maximum span length in runes.
	ChunkSize() int

	// Overlap returns the maximum overlap between consecutive spans.
	Overlap() int
}
