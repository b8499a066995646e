package mcp

import (
	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Story generates stories. Required.
	Story driving.StoryService

	// Retrieval backs the collection resources. Optional.
	Retrieval driving.RetrievalService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Story == nil {
		return ErrMissingStoryService
	}
	return nil
}
