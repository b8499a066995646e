package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for storysmith resources.
	uriScheme = "storysmith://"

	contextPrefix = uriScheme + "context/"
)

// registerResources registers resource handlers when retrieval is available.
func (s *Server) registerResources() {
	if s.ports.Retrieval == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collection",
		Name:        "collection",
		Description: "The vector collection: embedding model, dimensions and record count",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: contextPrefix + "{query}",
		Name:        "context",
		Description: "Corpus chunks retrieved for a query, nearest first",
		MIMEType:    "application/json",
	}, s.handleContextResource)
}

// handleCollectionResource describes the collection. A collection that was
// never ingested is reported with zero records.
func (s *Server) handleCollectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	coll, err := s.ports.Retrieval.Stats(ctx)
	if errors.Is(err, domain.ErrCollectionNotFound) {
		coll = &domain.Collection{Name: domain.DefaultCollection}
	} else if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}

	info := struct {
		Name       string `json:"name"`
		Model      string `json:"model,omitempty"`
		Dimensions int    `json:"dimensions,omitempty"`
		Count      int    `json:"count"`
	}{coll.Name, coll.Model, coll.Dimensions, coll.Count}

	return jsonResource(req.Params.URI, info)
}

// handleContextResource returns the chunks retrieved for the query in the URI.
func (s *Server) handleContextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	query := extractQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Retrieval.Retrieve(ctx, query, domain.DefaultTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	type chunkInfo struct {
		ID       string            `json:"id"`
		Distance float64           `json:"distance"`
		Document string            `json:"document"`
		Metadata map[string]string `json:"metadata,omitempty"`
	}
	chunks := make([]chunkInfo, len(result.Records))
	for i, r := range result.Records {
		chunks[i] = chunkInfo{ID: r.ID, Distance: r.Distance, Document: r.Document, Metadata: r.Metadata}
	}

	return jsonResource(req.Params.URI, chunks)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractQuery decodes the query from storysmith://context/{query}.
func extractQuery(uri string) string {
	if !strings.HasPrefix(uri, contextPrefix) {
		return ""
	}
	q, err := url.PathUnescape(strings.TrimPrefix(uri, contextPrefix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(q)
}
