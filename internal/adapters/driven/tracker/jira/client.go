// Package jira files generated stories as Jira issues over the REST v2 API.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.IssueTracker = (*Client)(nil)

// Defaults.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultIssueType = "Story"

	// MaxSummary is Jira's summary field limit.
	MaxSummary = 250
)

// Config holds Jira connection settings. Either AccessToken (OAuth2 bearer)
// or Email plus APIToken (basic auth) must be set.
type Config struct {
	BaseURL     string
	Email       string
	APIToken    string
	AccessToken string
	ProjectKey  string
	IssueType   string
	Timeout     time.Duration

	// HTTPClient is the base client; used by tests.
	HTTPClient *http.Client
}

// FromSettings maps tracker settings onto a Config.
func FromSettings(s domain.TrackerSettings) Config {
	return Config{
		BaseURL:     s.BaseURL,
		Email:       s.Email,
		APIToken:    s.APIToken,
		AccessToken: s.OAuthToken,
		ProjectKey:  s.ProjectKey,
		IssueType:   s.IssueType,
		Timeout:     s.Timeout,
	}
}

// configError keeps the user-facing message while matching ErrTrackerNotConfigured.
type configError string

func (e configError) Error() string { return string(e) }
func (e configError) Unwrap() error { return domain.ErrTrackerNotConfigured }

// Configuration failures, checked on every CreateIssue call.
const (
	errNoBaseURL     = configError("JIRA_BASE_URL is not set")
	errNoCredentials = configError("JIRA_EMAIL or JIRA_API_TOKEN is not set")
	errNoProject     = configError("no project key provided and JIRA_PROJECT_KEY not set")
)

// Client creates Jira issues.
type Client struct {
	cfg    Config
	client *http.Client
}

type createRequest struct {
	Fields fields `json:"fields"`
}

type fields struct {
	Project     keyRef   `json:"project"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	IssueType   nameRef  `json:"issuetype"`
	Labels      []string `json:"labels,omitempty"`
}

type keyRef struct {
	Key string `json:"key"`
}

type nameRef struct {
	Name string `json:"name"`
}

type createResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// New creates a client. Missing settings are not an error here: the story
// pipeline runs without a tracker and only CreateIssue reports them.
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.IssueType == "" {
		cfg.IssueType = DefaultIssueType
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{}
	}

	var client *http.Client
	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		}))
	} else {
		c := *base
		client = &c
	}
	client.Timeout = cfg.Timeout

	return &Client{cfg: cfg, client: client}
}

// DefaultProject returns the configured project key.
func (c *Client) DefaultProject() string {
	return c.cfg.ProjectKey
}

// CreateIssue files req as a Jira issue of the configured type.
func (c *Client) CreateIssue(ctx context.Context, req domain.IssueRequest) (*domain.Issue, error) {
	if c.cfg.BaseURL == "" {
		return nil, errNoBaseURL
	}
	basicAuth := c.cfg.Email != "" && c.cfg.APIToken != ""
	if c.cfg.AccessToken == "" && !basicAuth {
		return nil, errNoCredentials
	}
	project := req.ProjectKey
	if project == "" {
		project = c.cfg.ProjectKey
	}
	if project == "" {
		return nil, errNoProject
	}

	body, err := json.Marshal(createRequest{Fields: fields{
		Project:     keyRef{Key: project},
		Summary:     Truncate(req.Summary, MaxSummary),
		Description: req.Description,
		IssueType:   nameRef{Name: c.cfg.IssueType},
		Labels:      req.Labels,
	}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/rest/api/2/issue", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.AccessToken == "" {
		httpReq.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &domain.IssueCreationError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	// An unparseable success body yields an issue with no key; callers
	// report that as an unexpected response.
	var created createResponse
	_ = json.Unmarshal(respBody, &created)

	issue := &domain.Issue{Key: created.Key, ID: created.ID}
	if created.Key != "" {
		issue.URL = c.cfg.BaseURL + "/browse/" + created.Key
	}
	return issue, nil
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
