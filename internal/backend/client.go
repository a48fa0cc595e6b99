// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the ChatinAja question
// answering service: one endpoint to ask, one to list a user's saved
// sessions grouped by recency, and one to load a session transcript.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/chatin-tui/internal/observability"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL matches the development backend.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the retry budget for idempotent reads.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// Error variables for common backend errors.
var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrNotFound indicates the chat or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")
)

// BackendError represents a non-2xx response from the backend.
type BackendError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// AskRequest is the payload for the ask endpoint. UserID and ChatID are
// omitted for guest sessions; FormatResponse asks the backend for
// markdown-formatted answers.
type AskRequest struct {
	UserMessage    string `json:"user_message"`
	UserID         string `json:"user_id,omitempty"`
	ChatID         string `json:"chat_id,omitempty"`
	FormatResponse bool   `json:"format_response"`
}

// AskResponse is the reply from the ask endpoint. ChatID is present for
// signed-in users and identifies the session the turn was persisted to,
// freshly created when the request carried none.
type AskResponse struct {
	Response string `json:"response"`
	ChatID   string `json:"chat_id,omitempty"`
}

// HistoryEntry is one saved session as the history endpoint reports it.
type HistoryEntry struct {
	ChatID       string `json:"chat_id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
}

// HistoryResponse groups a user's sessions by recency bucket. Absent
// buckets decode as empty slices.
type HistoryResponse struct {
	Today     []HistoryEntry `json:"today"`
	Yesterday []HistoryEntry `json:"yesterday"`
	Last7Days []HistoryEntry `json:"last7days"`
	Older     []HistoryEntry `json:"older"`
}

// TranscriptMessage is one stored message in a session transcript.
type TranscriptMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// transcriptResponse is the internal envelope of the messages endpoint.
type transcriptResponse struct {
	Messages []TranscriptMessage `json:"messages"`
}

// apiErrorResponse is the backend's error envelope.
type apiErrorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the ChatinAja backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	log        observability.Logger
}

// New creates a backend client for the given base URL.
func New(baseURL string, log observability.Logger) *Client {
	if log == nil {
		log = observability.Nop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		log:        log,
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the retry budget for the read endpoints.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// WithHTTPClient swaps the underlying HTTP client; tests use this.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// ASK
// =============================================================================

// Ask submits a question and returns the answer. Exactly one request is
// issued per call: asking is not idempotent (a retry could persist the
// turn twice), so transient failures surface to the caller instead.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("ask request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.log.Debug("ask response", "status", resp.StatusCode, "duration", time.Since(start))

	respBody, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var askResp AskResponse
	if err := json.Unmarshal(respBody, &askResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &askResp, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// History fetches the user's saved sessions grouped by recency. The
// read is idempotent, so transient failures are retried with
// exponential backoff.
func (c *Client) History(ctx context.Context, userID string) (*HistoryResponse, error) {
	u := c.baseURL + "/chat/history/" + url.PathEscape(userID)

	body, err := c.getWithRetry(ctx, u)
	if err != nil {
		return nil, err
	}

	var hist HistoryResponse
	if err := json.Unmarshal(body, &hist); err != nil {
		return nil, fmt.Errorf("failed to parse history response: %w", err)
	}
	return &hist, nil
}

// Messages fetches the full transcript of a saved session.
func (c *Client) Messages(ctx context.Context, chatID, userID string) ([]TranscriptMessage, error) {
	u := fmt.Sprintf("%s/chat/%s/messages?user_id=%s",
		c.baseURL, url.PathEscape(chatID), url.QueryEscape(userID))

	body, err := c.getWithRetry(ctx, u)
	if err != nil {
		return nil, err
	}

	var tr transcriptResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse transcript response: %w", err)
	}
	return tr.Messages, nil
}

// getWithRetry performs an idempotent GET with exponential backoff on
// transient failures.
func (c *Client) getWithRetry(ctx context.Context, u string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		body, err := c.doGet(ctx, u)
		if err == nil {
			return body, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		c.log.Debug("retrying request", "url", u, "attempt", attempt+1, "error", err)
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doGet performs a single GET request.
func (c *Client) doGet(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}
	return body, nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts non-2xx responses to Go errors.
func (c *Client) handleErrorResponse(status int, body []byte) error {
	msg := string(body)
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Detail != "" {
			msg = apiErr.Detail
		} else if apiErr.Error != "" {
			msg = apiErr.Error
		}
	}

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	default:
		return &BackendError{Status: status, Message: msg}
	}
}

// isRetryable reports whether an error warrants a retry of an
// idempotent request.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
		return true
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Status >= 500 && be.Status < 600
	}
	return false
}

// calculateBackoff returns the delay before the next retry attempt.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
