// Package github is the provider adapter: typed wrappers over the GitHub
// REST API with a uniform three-way response classification (success,
// business error, transport error).
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://api.github.com"

// ErrNoBody marks a non-success response that carried no body to explain
// itself.
var ErrNoBody = errors.New("github: error response with no body")

// APIError is a structured error body returned by the provider.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []FieldError
}

// FieldError is one entry of an error body's errors list.
type FieldError struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: %s (status %d)", e.Message, e.StatusCode)
}

// Client talks to the GitHub REST API on behalf of a single token. It is
// constructed once by the worker and not shared.
type Client struct {
	// BaseURL may be overridden for tests.
	BaseURL string

	http *http.Client
	log  *slog.Logger
}

// NewClient builds a client whose transport retries transient failures and
// injects the token on every request.
func NewClient(token string, log *slog.Logger) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.Logger = nil

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, retry.StandardClient())
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})

	return &Client{
		BaseURL: defaultBaseURL,
		http:    oauth2.NewClient(ctx, src),
		log:     log,
	}
}

// GetPullRequest fetches a pull request record.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	var pr PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)
	if err := c.get(ctx, path, &pr); err != nil {
		return nil, fmt.Errorf("fetch pull request: %w", err)
	}
	return &pr, nil
}

// ListPullRequestCommits fetches the raw commits of a pull request.
func (c *Client) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]Commit, error) {
	var commits []Commit
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/commits", owner, repo, number)
	if err := c.get(ctx, path, &commits); err != nil {
		return nil, fmt.Errorf("fetch pull request commits: %w", err)
	}
	return commits, nil
}

// ListIssueComments fetches the issue comments of a pull request.
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]Comment, error) {
	var comments []Comment
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number)
	if err := c.get(ctx, path, &comments); err != nil {
		return nil, fmt.Errorf("fetch pull request comments: %w", err)
	}
	return comments, nil
}

// GetContents fetches a file's content object at a ref.
func (c *Client) GetContents(ctx context.Context, owner, repo, path, ref string) (*Content, error) {
	var content Content
	p := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s", owner, repo, path, url.QueryEscape(ref))
	if err := c.get(ctx, p, &content); err != nil {
		return nil, fmt.Errorf("fetch contents of %s: %w", path, err)
	}
	return &content, nil
}

// GetCollaboratorPermission fetches a user's permission on a repository.
func (c *Client) GetCollaboratorPermission(ctx context.Context, owner, repo, username string) (string, error) {
	var collab Collaborator
	path := fmt.Sprintf("/repos/%s/%s/collaborators/%s/permission", owner, repo, username)
	if err := c.get(ctx, path, &collab); err != nil {
		return "", fmt.Errorf("fetch collaborator permission: %w", err)
	}
	return collab.Permission, nil
}

// CreateStatus posts a commit status.
func (c *Client) CreateStatus(ctx context.Context, owner, repo, sha string, status Status) error {
	path := fmt.Sprintf("/repos/%s/%s/statuses/%s", owner, repo, sha)
	if err := c.post(ctx, path, status, nil); err != nil {
		return fmt.Errorf("create status: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// do performs a request and classifies the outcome: 200/201 bodies decode
// into out, other statuses with a body surface the provider's message, and
// everything else is a transport error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("github request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	default:
		if len(data) == 0 {
			return fmt.Errorf("%w: status %d", ErrNoBody, resp.StatusCode)
		}
		var errBody struct {
			Message string       `json:"message"`
			Errors  []FieldError `json:"errors"`
		}
		if err := json.Unmarshal(data, &errBody); err != nil {
			return fmt.Errorf("decode error response: %w", err)
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errBody.Message, Errors: errBody.Errors}
		c.log.Debug("github error response", "method", method, "path", path, "status", resp.StatusCode, "message", errBody.Message)
		return apiErr
	}
}
