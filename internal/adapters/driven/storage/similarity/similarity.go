// Package similarity holds the distance function and ranking shared by the
// vector store backends.
package similarity

import (
	"math"
	"sort"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

// CosineDistance returns 1 - cos(a, b), in [0, 2].
// A zero vector is treated as maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 2
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp rounding drift so identical vectors give exactly 0.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return 1 - cos
}

// Candidate is a stored record considered for a query.
type Candidate struct {
	ID        string
	Embedding []float32
	Document  string
	Metadata  map[string]string
}

// TopK scores candidates against query and returns at most k hits,
// ordered by ascending distance with ties broken by id.
func TopK(query []float32, candidates []Candidate, k int) []domain.RetrievedRecord {
	if k <= 0 || len(candidates) == 0 {
		return []domain.RetrievedRecord{}
	}

	hits := make([]domain.RetrievedRecord, len(candidates))
	for i, c := range candidates {
		hits[i] = domain.RetrievedRecord{
			ID:       c.ID,
			Document: c.Document,
			Metadata: c.Metadata,
			Distance: CosineDistance(query, c.Embedding),
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
