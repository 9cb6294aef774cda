// Package github files feedback as issues through the GitHub REST API.
package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const apiVersion = "2022-11-28"

// IssueRequest is the body of POST /repos/{owner}/{repo}/issues
type IssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// Issue is the subset of the created issue the service reports back
type Issue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// APIError is a non-201 answer from GitHub
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github returned %d: %s", e.StatusCode, e.Body)
}

// Client creates issues in a single repository
type Client struct {
	baseURL    string
	repo       string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for repo ("owner/name") against baseURL
func NewClient(baseURL, repo, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		repo:       repo,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Repo is the owner/name issues are filed against
func (c *Client) Repo() string {
	return c.repo
}

// CreateIssue files one issue. It is never retried.
func (c *Client) CreateIssue(ctx context.Context, issue IssueRequest) (*Issue, error) {
	payload, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/issues", c.baseURL, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build issue request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call github: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read github response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var created Issue
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode github response: %w", err)
	}
	return &created, nil
}
