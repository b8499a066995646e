// Package chunker splits text into bounded, overlapping spans, preferring
// paragraph, then line, then sentence, then word boundaries before a hard cut.
package chunker

import (
	"strings"

	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// separators in priority order. A cut is placed after the separator.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune(" "),
	[]rune("\t"),
}

// Processor splits text into spans of at most chunkSize runes.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// ChunkSize returns the maximum span length in runes.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the maximum overlap between consecutive spans.
func (p *Processor) Overlap() int { return p.overlap }

// Split returns the spans of text in order. Empty text yields no spans.
func (p *Processor) Split(text string) []driven.Span {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var spans []driven.Span
	start := 0
	for {
		end := n
		if n-start > p.chunkSize {
			end = p.cutPoint(runes, start, start+p.chunkSize)
		}

		spans = append(spans, driven.Span{
			Index: len(spans),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		if end >= n {
			return spans
		}
		start = p.nextStart(runes, start, end)
	}
}

// cutPoint picks the end of a span starting at start, no later than limit.
// The cut must leave room for the overlap so the next span still advances.
func (p *Processor) cutPoint(runes []rune, start, limit int) int {
	minCut := start + p.overlap + 1
	if quarter := start + p.chunkSize/4; quarter > minCut {
		minCut = quarter
	}

	for _, sep := range separators {
		if cut := lastCut(runes, sep, minCut, limit); cut > 0 {
			return cut
		}
	}
	return limit
}

// lastCut returns the largest position in [minCut, limit] directly after an
// occurrence of sep, or -1.
func lastCut(runes, sep []rune, minCut, limit int) int {
	for cut := limit; cut >= minCut; cut-- {
		i := cut - len(sep)
		if i < 0 {
			break
		}
		if hasPrefixAt(runes, sep, i) {
			return cut
		}
	}
	return -1
}

func hasPrefixAt(runes, sep []rune, i int) bool {
	if i+len(sep) > len(runes) {
		return false
	}
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}

// nextStart backs up from end by the overlap, then moves forward to the
// start of a word when the overlap window contains whitespace.
func (p *Processor) nextStart(runes []rune, start, end int) int {
	next := end - p.overlap
	if next <= start {
		return end
	}
	if next == end || isSpace(runes[next-1]) {
		return next
	}
	for i := next; i < end-1; i++ {
		if isSpace(runes[i]) {
			return i + 1
		}
	}
	return next
}

func isSpace(r rune) bool {
	return strings.ContainsRune(" \t\n\r", r)
}

// Reconstruct joins spans back into the original text by dropping each
// span's overlap with its predecessor.
func Reconstruct(spans []driven.Span) string {
	var b strings.Builder
	prevEnd := 0
	for i, s := range spans {
		runes := []rune(s.Text)
		if i > 0 {
			runes = runes[prevEnd-s.Start:]
		}
		b.WriteString(string(runes))
		prevEnd = s.End
	}
	return b.String()
}
