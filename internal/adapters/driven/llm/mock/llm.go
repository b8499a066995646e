// Package mock provides an offline LLM that always returns the same user story.
package mock

import (
	"context"
	"sync"

	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is reported by ModelName when none is configured.
const DefaultModel = "mock-ba"

// Story is the canned response.
const Story = `
SUMMARY:
This is a mock summary for a user story about a new login feature.

DESCRIPTION:
As a user, I want to be able to log in with my email and password so that I can access my account securely. This is a mock description.

ACCEPTANCE CRITERIA:
` + "```gherkin" + `
Given I am on the login page
When I enter my valid credentials
And I click the "Login" button
Then I should be redirected to my dashboard
` + "```" + `

POINTS ESTIMATE: 5
`

// LLMService returns Story for every prompt and records the last prompt seen.
type LLMService struct {
	model string

	mu         sync.Mutex
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

// NewLLMService creates a mock LLM.
func NewLLMService(model string) *LLMService {
	if model == "" {
		model = DefaultModel
	}
	return &LLMService{model: model}
}

// Generate returns Story unless ctx is done.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.lastPrompt, s.lastOpts = prompt, opts
	s.mu.Unlock()
	return Story, nil
}

// LastPrompt returns the most recent prompt and options passed to Generate.
func (s *LLMService) LastPrompt() (string, driven.GenerateOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrompt, s.lastOpts
}

// ModelName returns the configured model name.
func (s *LLMService) ModelName() string { return s.model }

// Ping always succeeds.
func (s *LLMService) Ping(context.Context) error { return nil }

// Close releases resources.
func (s *LLMService) Close() error { return nil }
