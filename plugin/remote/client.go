// Package remote talks to the out-of-process legal and social modules.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hrygo/switchboard/plugin/ai/timeout"
)

// Config holds the remote module client configuration.
type Config struct {
	// BaseURL is the module service root, e.g. http://modules:8000.
	// Empty means no remote service; the client answers with a stub reply.
	BaseURL string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	Poll    PollConfig
}

// Client calls remote module endpoints.
type Client struct {
	config     Config
	httpClient *http.Client
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	JobID  string `json:"job_id,omitempty"`
	Status string `json:"status,omitempty"`
}

// Job statuses reported by the jobs endpoint.
const (
	statusPending = "pending"
	statusFailed  = "failed"
)

// NewClient creates a new remote module client.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = timeout.RemoteModuleTimeout
	}
	if config.Poll.MaxAttempts <= 0 {
		config.Poll = DefaultPollConfig()
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configured reports whether a remote service URL is set.
func (c *Client) Configured() bool {
	return c.config.BaseURL != ""
}

// StubReply is the reply used when no remote service is configured.
func StubReply(module string) string {
	return fmt.Sprintf("სტუბ-პასუხი %s-დან", module)
}

// Chat sends prompt to the named module and returns its reply. A 202
// answer carrying a job id is polled until the job completes.
func (c *Client) Chat(ctx context.Context, module, prompt string) (string, error) {
	if !c.Configured() {
		return StubReply(module), nil
	}

	body, err := json.Marshal(chatRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.config.BaseURL + "/" + url.PathEscape(module) + "/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, status, err := c.do(req)
	if err != nil {
		return "", err
	}

	switch status {
	case http.StatusOK:
		return resp.Reply, nil
	case http.StatusAccepted:
		if resp.JobID == "" {
			return "", fmt.Errorf("remote %s accepted the request without a job id", module)
		}
		slog.Debug("remote module job pending", "module", module, "job_id", resp.JobID)
		return Poll(ctx, c.config.Poll, func(ctx context.Context) (string, bool, error) {
			return c.jobStatus(ctx, module, resp.JobID)
		})
	default:
		return "", fmt.Errorf("remote %s returned status %d", module, status)
	}
}

func (c *Client) jobStatus(ctx context.Context, module, jobID string) (string, bool, error) {
	endpoint := c.config.BaseURL + "/" + url.PathEscape(module) + "/jobs/" + url.PathEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, status, err := c.do(req)
	if err != nil {
		return "", false, err
	}

	switch {
	case status == http.StatusAccepted, resp.Status == statusPending:
		return "", false, nil
	case status != http.StatusOK:
		return "", false, fmt.Errorf("remote %s job %s returned status %d", module, jobID, status)
	case resp.Status == statusFailed:
		return "", false, fmt.Errorf("remote %s job %s failed", module, jobID)
	default:
		return resp.Reply, true, nil
	}
}

func (c *Client) do(req *http.Request) (*chatResponse, int, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("remote request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	resp := &chatResponse{}
	if httpResp.StatusCode == http.StatusOK || httpResp.StatusCode == http.StatusAccepted {
		if err := json.Unmarshal(data, resp); err != nil {
			return nil, 0, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp, httpResp.StatusCode, nil
}
