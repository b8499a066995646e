// Package mock provides an offline, deterministic embedding service.
//
// Vectors are built by feature hashing: every lower-cased word is hashed with
// SHA-256 to a signed bucket, and the result is normalised to unit length.
// Texts that share vocabulary therefore land close together, which keeps
// retrieval meaningful without a model.
package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "mock-hash-v1"
	DefaultDimensions = 1536
)

// ModelPrefix starts every model name the mock reports, so a collection
// built offline never matches a live provider's model.
const ModelPrefix = "mock-"

// EmbeddingService is a deterministic hash-based embedder.
type EmbeddingService struct {
	model      string
	dimensions int
}

// NewEmbeddingService creates a mock embedder. Zero values fall back to defaults.
// A model name without ModelPrefix gets it prepended.
func NewEmbeddingService(model string, dimensions int) *EmbeddingService {
	switch {
	case model == "":
		model = DefaultModel
	case !strings.HasPrefix(model, ModelPrefix):
		model = ModelPrefix + model
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{model: model, dimensions: dimensions}
}

// Embed returns the unit vector for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		// Fall back to hashing the raw text so distinct inputs still differ.
		words = []string{text}
	}
	for _, w := range words {
		sum := sha256.Sum256([]byte(w))
		bucket := binary.BigEndian.Uint64(sum[:8]) % uint64(s.dimensions)
		sign := 1.0
		if sum[8]&1 == 1 {
			sign = -1.0
		}
		vec[bucket] += sign
	}
	return normalise(vec), nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the configured model name.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error { return nil }

// Close releases resources.
func (s *EmbeddingService) Close() error { return nil }

func normalise(vec []float64) []float32 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, len(vec))
	if norm == 0 {
		// Every word cancelled out; pin to the first axis.
		out[0] = 1
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}
