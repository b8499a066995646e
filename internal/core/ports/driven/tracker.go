package driven

import (
	"context"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

// IssueTracker creates work items in an external tracker.
type IssueTracker interface {
	// CreateIssue files a story. Remote rejections return *domain.IssueCreationError.
	// Missing configuration returns domain.ErrTrackerNotConfigured.
	CreateIssue(ctx context.Context, req domain.IssueRequest) (*domain.Issue, error)

	// DefaultProject returns the project used when a request names none.
	DefaultProject() string
}
