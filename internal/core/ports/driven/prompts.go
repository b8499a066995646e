package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptStoryContext frames retrieved context for a story request.
	// The template expects %s for the joined context, then %s for the request.
	PromptStoryContext = "story_context"

	// PromptStoryNoContext is used when retrieval found nothing.
	// The template expects %s for the request.
	PromptStoryNoContext = "story_no_context"
)
