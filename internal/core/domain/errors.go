package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Extraction Errors.

	// ErrExtraction indicates a file could not be scraped.
	// Ingestion skips the file and continues.
	ErrExtraction = errors.New("extraction failed")

	// ErrUnsupportedFormat indicates a file extension no scraper handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmptyContent indicates an element or chunk holds only whitespace.
	ErrEmptyContent = errors.New("empty content")

	// Vector Store Errors.

	// ErrCollectionNotFound indicates a query against a collection that was never created.
	// Retrieval turns this into an empty result.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrEmptyResult indicates a query matched nothing.
	ErrEmptyResult = errors.New("empty result")

	// ErrDuplicateID indicates a record id already exists in the collection.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrModelMismatch indicates the embedding model differs from the one
	// the collection was created with.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrDimensionMismatch indicates a vector of the wrong length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// AI Errors.

	// ErrGeneration indicates the language model produced no response.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Tracker Errors.

	// ErrIssueCreation indicates the issue tracker rejected a create request.
	ErrIssueCreation = errors.New("issue creation failed")

	// ErrTrackerNotConfigured indicates missing tracker URL, credentials or project.
	ErrTrackerNotConfigured = errors.New("issue tracker not configured")
)

// IssueCreationError carries the tracker's response for a failed create call.
type IssueCreationError struct {
	StatusCode int
	Body       string
}

func (e *IssueCreationError) Error() string {
	return fmt.Sprintf("Jira create story failed: %d %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrIssueCreation.
func (e *IssueCreationError) Unwrap() error {
	return ErrIssueCreation
}
