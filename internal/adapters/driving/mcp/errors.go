// Package mcp provides the Model Context Protocol adapter for storysmith:
// a tool server exposing story generation and a diagnostic client.
package mcp

import "errors"

// ErrMissingStoryService is returned when the story service is not provided.
var ErrMissingStoryService = errors.New("mcp: story service is required")

// ErrNoTextContent is returned by the client when a tool result carries no text.
var ErrNoTextContent = errors.New("mcp: tool result has no text content")
