// Package client implements the Grace platform HTTP API client.
// It covers the three endpoints the dashboard consumes: GET /context,
// POST /chat, and POST /approvals/action.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"grace/internal/logging"
	"grace/internal/types"

	"golang.org/x/sync/singleflight"
)

// Client talks to the Grace backend over HTTP/JSON.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client

	// Concurrent context fetches are collapsed into one request: the poll
	// ticker and a gate-triggered refetch may fire together, and the
	// backend only needs to answer once.
	fetchGroup singleflight.Group
}

// Config configures a Client.
type Config struct {
	BaseURL string
	UserID  string
	Timeout time.Duration
}

// New creates a Client. Trailing slashes on the base URL are tolerated.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		userID:  cfg.UserID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchContext retrieves the current world-context snapshot.
// Lists missing from the payload stay nil; callers treat nil as empty.
func (c *Client) FetchContext(ctx context.Context) (*types.Snapshot, error) {
	v, err, _ := c.fetchGroup.Do("context", func() (interface{}, error) {
		return c.fetchContext(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Snapshot), nil
}

func (c *Client) fetchContext(ctx context.Context) (*types.Snapshot, error) {
	timer := logging.StartTimer(logging.CategoryAPI, "GET /context")
	defer timer.Stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/context", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build context request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("context fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("context fetch returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var snapshot types.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	logging.API("GET /context -> %d artifacts, %d missions, %d approvals",
		len(snapshot.RecentArtifacts), len(snapshot.ActiveMissions), len(snapshot.PendingApprovals))
	return &snapshot, nil
}

// SendChat posts a user message and returns the assistant reply.
func (c *Client) SendChat(ctx context.Context, message string) (*types.ChatResponse, error) {
	payload := types.ChatRequest{
		Message: message,
		UserID:  c.userID,
	}

	var reply types.ChatResponse
	if err := c.postJSON(ctx, "/chat", payload, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ResolveApproval sends an accept/decline decision for a pending approval.
// A transport success with success=false in the body is still a failure:
// the caller must leave the approval pending either way.
func (c *Client) ResolveApproval(ctx context.Context, traceID string, decision types.Decision, reason string) error {
	payload := types.ApprovalActionRequest{
		TraceID: traceID,
		Action:  decision,
		Reason:  reason,
		UserID:  c.userID,
	}

	var reply types.ApprovalActionResponse
	if err := c.postJSON(ctx, "/approvals/action", payload, &reply); err != nil {
		return err
	}
	if !reply.Success {
		if reply.Error != "" {
			return fmt.Errorf("approval action rejected: %s", reply.Error)
		}
		return fmt.Errorf("approval action rejected by backend")
	}

	logging.Approvals("resolved %s as %s", traceID, decision)
	return nil
}

// postJSON performs a JSON POST and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	timer := logging.StartTimer(logging.CategoryAPI, "POST "+path)
	defer timer.StopWithThreshold(5 * time.Second)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("POST %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
