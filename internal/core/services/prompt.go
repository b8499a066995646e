package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// ContextSeparator joins retrieved chunks inside the context block.
const ContextSeparator = "\n\n---\n\n"

// Fallback templates used when no PromptStore is configured or a
// customised template is unusable.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const (
	defaultStoryNoContextPrompt = `You are a helpful business analyst assistant.
Please answer the following user request. Note: No specific context was found in the knowledge base for this query.
User Request: %s`

	defaultStoryContextPrompt = `You are a helpful business analyst assistant. Your task is to answer the user's request based on the provided context.
If the context contains the necessary information, use it to formulate a detailed and accurate response.
If the context does not fully cover the user's request, use your general knowledge to supplement the answer but clearly state which parts of the answer come from the provided context.

CONTEXT:
---
%s
---

USER REQUEST:
%s`
)

// PromptComposer merges a request with retrieved chunks into one instruction.
type PromptComposer struct {
	prompts driven.PromptStore
}

// NewPromptComposer creates a composer. prompts may be nil.
func NewPromptComposer(prompts driven.PromptStore) *PromptComposer {
	return &PromptComposer{prompts: prompts}
}

// Compose builds the prompt. Chunks are embedded verbatim in the order given;
// with no chunks the no-context template is used and no CONTEXT block appears.
func (c *PromptComposer) Compose(request string, chunks []string) string {
	if len(chunks) == 0 {
		tmpl := c.template(driven.PromptStoryNoContext, defaultStoryNoContextPrompt, 1)
		return fmt.Sprintf(tmpl, request)
	}
	tmpl := c.template(driven.PromptStoryContext, defaultStoryContextPrompt, 2)
	return fmt.Sprintf(tmpl, strings.Join(chunks, ContextSeparator), request)
}

// template loads name from the store, falling back when it is missing or
// does not take exactly verbs string arguments.
func (c *PromptComposer) template(name, fallback string, verbs int) string {
	if c.prompts == nil {
		return fallback
	}
	tmpl, err := c.prompts.Load(name)
	if err != nil {
		logger.Debug("Prompt %s unavailable, using default: %v", name, err)
		return fallback
	}
	if n := strings.Count(strings.ReplaceAll(tmpl, "%%", ""), "%"); n != verbs || strings.Count(tmpl, "%s") != verbs {
		logger.Warn("Prompt %s must contain exactly %d %%s placeholder(s); using default", name, verbs)
		return fallback
	}
	return tmpl
}
