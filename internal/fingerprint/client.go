// Package fingerprint queries the fingerprint matching services.
package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/fpaudit/internal/model"
	"github.com/ppiankov/fpaudit/internal/util"
)

const maxErrorBody = 512

// StatusError is returned when a service answers with a non-2xx status
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status: %s, body: %s", e.Status, e.Body)
}

// DecodeError is returned when a response body is not a valid match result
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to deserialize fingerprint response: %v, got body: %s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client sends fingerprint batches to either service over a shared HTTP client
type Client struct {
	httpClient *http.Client
	endpoints  model.Endpoints
	userAgent  string
	maxBytes   int64
	logger     *slog.Logger
}

// NewClient creates a new fingerprint client
func NewClient(httpClient *http.Client, endpoints model.Endpoints, userAgent string, maxBytes int64, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: httpClient,
		endpoints:  endpoints,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Query posts fingerprints to the service and decodes its match result
func (c *Client) Query(ctx context.Context, svc model.Service, fingerprints []model.Fingerprint) (*model.MatchResult, error) {
	body, err := svc.EncodeBody(fingerprints)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.URL(svc), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, readErr := util.ReadBody(resp.Body, c.maxBytes)
	var tooLarge *util.BodyTooLargeError
	if readErr != nil && !errors.As(readErr, &tooLarge) {
		return nil, fmt.Errorf("read body: %w", readErr)
	}

	c.logger.Debug("fingerprint response",
		"service", svc.String(),
		"fingerprints", len(fingerprints),
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   snippet(data),
		}
	}

	// Oversized bodies are never decoded
	if readErr != nil {
		return nil, fmt.Errorf("read body: %w", readErr)
	}

	var result model.MatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &DecodeError{Body: snippet(data), Err: err}
	}

	return &result, nil
}

// snippet trims a response body for inclusion in error messages
func snippet(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) > maxErrorBody {
		return string(data[:maxErrorBody]) + "..."
	}
	return string(data)
}
