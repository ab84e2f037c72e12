// Package grader implements the HTTP client for the external grading
// service. It classifies failures for the submission pipeline: network
// errors, timeouts, and 5xx responses are transient (retryable), 4xx
// responses are permanent.
package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prepdesk/prepdesk/internal/application/practice"
	"github.com/prepdesk/prepdesk/internal/domain/shared"
	"github.com/prepdesk/prepdesk/pkg/retry"
)

// ClientConfig contains configuration for the grading API client.
type ClientConfig struct {
	// BaseURL is the grading API base URL.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Client is the grading API client. It implements practice.Grader.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

var _ practice.Grader = (*Client)(nil)

// NewClient creates a new grading API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger,
	}
}

// Submit sends one answer for grading.
func (c *Client) Submit(ctx context.Context, itemID, answer string, timeSpentSeconds int) (practice.GradeResult, error) {
	reqBody := submitRequest{
		ItemID:           itemID,
		Answer:           answer,
		TimeSpentSeconds: timeSpentSeconds,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return practice.GradeResult{}, fmt.Errorf("marshal request: %w", err)
	}

	fullURL := c.config.BaseURL + "/api/v1/grade"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return practice.GradeResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Offline or timed out: worth retrying.
		if ctx.Err() != nil {
			return practice.GradeResult{}, ctx.Err()
		}
		return practice.GradeResult{}, retry.Retryable(
			shared.WrapError("grading", "Submit", shared.ErrServiceUnavailable, "request failed", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return practice.GradeResult{}, retry.Retryable(
			shared.WrapError("grading", "Submit", shared.ErrServiceUnavailable, "read response", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var dto gradeResponse
		if err := json.Unmarshal(body, &dto); err != nil {
			return practice.GradeResult{}, retry.Permanent(
				shared.WrapError("grading", "Parse", shared.ErrRejected, "invalid response body", err))
		}
		return dto.toResult(), nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return practice.GradeResult{}, retry.Retryable(
			shared.NewDomainError("grading", "Submit", shared.ErrRateLimited, "grader rate limited"))

	case resp.StatusCode >= 500:
		c.logger.Warn("grader returned server error", "status", resp.StatusCode)
		return practice.GradeResult{}, retry.Retryable(
			shared.NewDomainError("grading", "Submit", shared.ErrServiceUnavailable,
				fmt.Sprintf("grader returned status %d", resp.StatusCode)))

	case resp.StatusCode >= 400:
		return practice.GradeResult{}, retry.Permanent(
			shared.NewDomainError("grading", "Submit", shared.ErrRejected,
				fmt.Sprintf("grader rejected request with status %d", resp.StatusCode)))

	default:
		return practice.GradeResult{}, retry.Permanent(
			shared.NewDomainError("grading", "Submit", shared.ErrRejected,
				fmt.Sprintf("unexpected status %d", resp.StatusCode)))
	}
}
