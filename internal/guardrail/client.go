// Package guardrail is the HTTP client for the remote guardrail control
// plane: agent registration pushes and per-call policy evaluations.
package guardrail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clawsec/toolgate/internal/domain"
)

const (
	registerPath = "/v1/agents"
	evaluatePath = "/v1/evaluate"

	// DefaultTimeout bounds each control-plane call when no timeout is
	// configured.
	DefaultTimeout = 15 * time.Second
)

type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// NewClient builds a control-plane client. timeout <= 0 falls back to
// DefaultTimeout.
func NewClient(baseURL, apiKey, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Register pushes the agent's identity and full tool inventory upstream.
// The control plane treats repeated pushes with the same inventory as a
// no-op.
func (c *Client) Register(ctx context.Context, reg *domain.Registration) error {
	return c.post(ctx, registerPath, reg, nil)
}

// Evaluate asks the control plane for a verdict on a pending tool call.
func (c *Client) Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.EvaluationResponse, error) {
	var resp domain.EvaluationResponse
	if err := c.post(ctx, evaluatePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("guardrail request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("guardrail returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
