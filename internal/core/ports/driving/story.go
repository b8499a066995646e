package driving

import (
	"context"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

// StoryService turns a request into a story. Every front end goes through it.
type StoryService interface {
	// Generate runs retrieval, prompt composition, generation and optional
	// filing. Generation and filing failures are folded into Story.Text.
	// An error is returned only for invalid input or cancellation.
	Generate(ctx context.Context, req domain.StoryRequest) (*domain.Story, error)
}
