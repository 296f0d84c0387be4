// Package graphql is a minimal GraphQL-over-HTTP executor. Every request goes
// to the network; nothing is cached.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 4 << 10

// Document is a named query or mutation.
type Document struct {
	Name  string
	Query string
}

// Variables is the variable bag sent with a document.
type Variables map[string]any

// Clone returns a shallow copy so callers can add keys without mutating the
// original bag.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v)+2)
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Executor runs a document and decodes its data into out.
type Executor interface {
	Execute(ctx context.Context, doc Document, vars Variables, out any) error
}

// Client executes documents against a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    map[string]string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport is used as
// given and is not wrapped for tracing.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) ClientOption {
	return func(cl *Client) {
		cl.headers[key] = value
	}
}

// NewClient creates a client for endpoint. Requests are traced through
// otelhttp and bounded by timeout.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		endpoint: strings.TrimSpace(endpoint),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		headers: map[string]string{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Query         string    `json:"query"`
	OperationName string    `json:"operationName,omitempty"`
	Variables     Variables `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

// Execute posts the document and decodes the data field into out. A response
// carrying GraphQL errors returns them as Errors even when partial data is
// present. There are no retries.
func (c *Client) Execute(ctx context.Context, doc Document, vars Variables, out any) error {
	body, err := json.Marshal(request{Query: doc.Query, OperationName: doc.Name, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", doc.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", doc.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("graphql request failed",
			slog.String("operation", doc.Name),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: %w", doc.Name, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("graphql request completed",
		slog.String("operation", doc.Name),
		slog.Int("status", resp.StatusCode),
		slog.String("duration", time.Since(start).String()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{Operation: doc.Name, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode %s response: %w", doc.Name, err)
	}
	if len(payload.Errors) > 0 {
		return payload.Errors
	}
	if out == nil || len(payload.Data) == 0 || bytes.Equal(payload.Data, []byte("null")) {
		if out != nil {
			return fmt.Errorf("%s: %w", doc.Name, ErrNoData)
		}
		return nil
	}
	if err := json.Unmarshal(payload.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", doc.Name, err)
	}
	return nil
}

// ErrNoData is returned when a successful response carries no data.
var ErrNoData = errors.New("response contained no data")
