package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// Ensure StoryService implements the interface.
var _ driving.StoryService = (*StoryService)(nil)

// Notes appended to a story after the filing step.
const (
	issueCreatedNote    = "\n\nJira issue created: %s"
	issueUnexpectedNote = "\n\nJira creation returned unexpected response."
	issueFailedNote     = "\n\nJira creation failed: %v"

	generationFailedText = "Sorry, I was unable to get a response from the model: %v"

	// MaxSummaryLength bounds the issue summary.
	MaxSummaryLength = 250
)

// errStoryNotGenerated is noted instead of filing a fallback message.
var errStoryNotGenerated = errors.New("no story was generated")

// StoryService composes retrieval, prompting, generation and filing.
type StoryService struct {
	retriever driving.RetrievalService
	composer  *PromptComposer
	llm       driven.LLMService
	tracker   driven.IssueTracker
	opts      driven.GenerateOptions
}

// NewStoryService creates a story service. tracker may be nil, in which
// case filing requests fail with domain.ErrTrackerNotConfigured.
func NewStoryService(
	retriever driving.RetrievalService,
	composer *PromptComposer,
	llm driven.LLMService,
	tracker driven.IssueTracker,
	settings domain.LLMSettings,
) *StoryService {
	if composer == nil {
		composer = NewPromptComposer(nil)
	}
	return &StoryService{
		retriever: retriever,
		composer:  composer,
		llm:       llm,
		tracker:   tracker,
		opts: driven.GenerateOptions{
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		},
	}
}

// Generate produces a story for req.
func (s *StoryService) Generate(ctx context.Context, req domain.StoryRequest) (*domain.Story, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is empty", domain.ErrInvalidInput)
	}
	topK := req.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	logger.Section("Story")
	logger.Info("Retrieving context for: %q", prompt)
	story := &domain.Story{Retrieved: domain.RetrievalResult{Query: prompt}}

	retrieved, err := s.retriever.Retrieve(ctx, prompt, topK)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		// Retrieval problems degrade to the no-context prompt.
		logger.Warn("Retrieval failed, continuing without context: %v", err)
	default:
		story.Retrieved = *retrieved
	}
	logger.Info("Retrieved %d chunk(s)", len(story.Retrieved.Records))

	story.Prompt = s.composer.Compose(prompt, story.Retrieved.Documents())
	logger.Debug("Composed prompt:\n%s", story.Prompt)

	logger.Info("Generating with %s", s.llm.ModelName())
	generated, err := s.llm.Generate(ctx, story.Prompt, s.opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		story.GenerationErr = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		story.Text = fmt.Sprintf(generationFailedText, err)
		logger.Error("Generation failed: %v", err)
	} else {
		story.Generated = generated
		story.Text = generated
	}

	if req.CreateIssue {
		s.file(ctx, req, prompt, story)
	}
	return story, nil
}

// file creates the tracker issue and appends the outcome to story.Text.
func (s *StoryService) file(ctx context.Context, req domain.StoryRequest, prompt string, story *domain.Story) {
	var err error
	switch {
	case story.GenerationErr != nil:
		err = errStoryNotGenerated
	case s.tracker == nil:
		err = domain.ErrTrackerNotConfigured
	}
	if err != nil {
		story.IssueErr = err
		story.Text += fmt.Sprintf(issueFailedNote, err)
		return
	}

	issue, err := s.tracker.CreateIssue(ctx, domain.IssueRequest{
		Summary:     Summary(story.Generated, prompt),
		Description: story.Generated,
		ProjectKey:  req.ProjectKey,
		Labels:      req.Labels,
	})
	switch {
	case err != nil:
		story.IssueErr = err
		story.Text += fmt.Sprintf(issueFailedNote, err)
		logger.Warn("Issue creation failed: %v", err)
	case issue == nil || issue.Key == "":
		story.Text += issueUnexpectedNote
		logger.Warn("Issue creation returned no key")
	default:
		story.IssueKey = issue.Key
		story.Text += fmt.Sprintf(issueCreatedNote, issue.Key)
		logger.Info("Created issue %s", issue.Key)
	}
}

// Summary derives an issue summary: the first non-empty line of the story,
// with a bare "SUMMARY:" header replaced by the line after it; else the
// prompt. The result is trimmed and at most MaxSummaryLength runes.
func Summary(story, prompt string) string {
	var summary string
	lines := strings.Split(story, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if rest, ok := cutHeader(line, "SUMMARY:"); ok {
			if rest != "" {
				summary = rest
				break
			}
			continue
		}
		summary = line
		break
	}
	if summary == "" {
		summary = strings.TrimSpace(prompt)
	}
	if utf8.RuneCountInString(summary) > MaxSummaryLength {
		summary = strings.TrimSpace(string([]rune(summary)[:MaxSummaryLength]))
	}
	return summary
}

func cutHeader(line, header string) (string, bool) {
	if len(line) < len(header) || !strings.EqualFold(line[:len(header)], header) {
		return "", false
	}
	return strings.TrimSpace(line[len(header):]), true
}
