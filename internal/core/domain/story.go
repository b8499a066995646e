package domain

// DefaultTopK is the number of chunks retrieved for a story request.
const DefaultTopK = 3

// StoryRequest is a single request to generate a story.
type StoryRequest struct {
	Prompt string

	// TopK overrides DefaultTopK when positive.
	TopK int

	// CreateIssue files the generated story in the issue tracker.
	CreateIssue bool

	// ProjectKey overrides the configured default project.
	ProjectKey string
	Labels     []string
}

// Story is the outcome of a story request.
type Story struct {
	// Text is the final answer including any tracker note.
	Text string

	// Generated is the raw model output, empty when generation failed.
	Generated string

	Prompt    string
	Retrieved RetrievalResult

	// IssueKey is set when the story was filed.
	IssueKey string

	// IssueErr records why filing failed. Filing failures never discard Text.
	IssueErr error

	// GenerationErr is set when the model call failed and Text holds the fallback message.
	GenerationErr error
}

// IssueRequest is the input to the issue tracker.
type IssueRequest struct {
	Summary     string
	Description string
	ProjectKey  string
	Labels      []string
}

// Issue identifies a created tracker item.
type Issue struct {
	Key string
	ID  string
	URL string
}
