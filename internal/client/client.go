// Package client fetches books from the GraphQL endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

const (
	DefaultBaseURL       = "http://127.0.0.1:4000/graphql/"
	maxResponseBodyBytes = 1 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the pooled default client. The caller's client is
// never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request, including reading the body. It applies
// regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: cleanhttp.DefaultPooledClient(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BookQuery builds the selection document for id, quoting it as a string
// literal.
func BookQuery(id string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(id)
	literal := strings.TrimSuffix(buf.String(), "\n")
	return "{ book(id: " + literal + ") { id, name, genre } }"
}

// FetchBook performs exactly one POST and classifies the outcome. Errors are
// one of *TransportError, *ProtocolError, ErrEmptyBody, *CodecError,
// *QueryError or ErrNotFound.
func (c *Client) FetchBook(ctx context.Context, id string) (book models.Book, retErr error) {
	started := time.Now()
	defer func() {
		attrs := []any{"component", "client", "operation", "fetch_book", "latency_ms", time.Since(started).Milliseconds()}
		if retErr != nil {
			c.logger.Debug("book fetch failed", append(attrs, "error", retErr.Error())...)
			return
		}
		c.logger.Debug("book fetched", attrs...)
	}()

	payload, err := json.Marshal(models.GraphQLRequest{Query: BookQuery(id)})
	if err != nil {
		return models.Book{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return models.Book{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Book{}, &TransportError{Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && retErr == nil {
			retErr = &TransportError{Err: closeErr}
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return models.Book{}, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Book{}, &ProtocolError{StatusCode: resp.StatusCode, Message: statusMessage(resp, body)}
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.Book{}, ErrEmptyBody
	}

	var decoded models.BookResponse
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return models.Book{}, &CodecError{Err: err}
	}
	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return models.Book{}, &QueryError{Messages: messages}
	}
	if decoded.Data == nil || decoded.Data.Book == nil {
		return models.Book{}, ErrNotFound
	}
	return *decoded.Data.Book, nil
}

// statusMessage prefers the server's first GraphQL error, then the reason
// phrase of the status line.
func statusMessage(resp *http.Response, body []byte) string {
	var decoded models.BookResponse
	if err := json.Unmarshal(body, &decoded); err == nil {
		if msg, ok := decoded.FirstErrorMessage(); ok {
			return msg
		}
	}
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason != "" {
		return reason
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "HTTP " + strconv.Itoa(resp.StatusCode)
}
