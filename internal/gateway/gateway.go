// Package gateway talks to the remote task API.
package gateway

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

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/pablasso/quadro/internal/task"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// RequestIDHeader carries a per-request id the server echoes in its logs.
const RequestIDHeader = "X-Request-ID"

const maxResponseSize = 4 << 20

// Client issues list/create/update/delete calls against the task API.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     log.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}

	silent := log.New()
	silent.SetOutput(io.Discard)

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{},
		log:     silent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type listResponse struct {
	Data json.RawMessage `json:"data"`
}

type writeResponse struct {
	Success bool       `json:"success"`
	Data    *task.Task `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// List returns every task the server holds.
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	const op = "list tasks"

	status, body, err := c.do(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, &task.NetworkError{Op: op, Err: err}
	}
	if status != http.StatusOK {
		return nil, &task.NetworkError{Op: op, Err: unexpectedStatus(status, body)}
	}

	var resp listResponse
	if err := sonic.ConfigStd.Unmarshal(body, &resp); err != nil {
		return nil, &task.NetworkError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}

	// A missing or non-array data field is an empty board.
	raw := bytes.TrimSpace(resp.Data)
	if len(raw) == 0 || raw[0] != '[' {
		return []task.Task{}, nil
	}

	var tasks []task.Task
	if err := sonic.ConfigStd.Unmarshal(raw, &tasks); err != nil {
		return nil, &task.NetworkError{Op: op, Err: fmt.Errorf("malformed task list: %w", err)}
	}
	return tasks, nil
}

// Create adds a task. The server assigns its id. Create is not idempotent.
func (c *Client) Create(ctx context.Context, title, description, status string) (task.Task, error) {
	const op = "create task"

	req := createRequest{Title: title, Description: description, Status: status}
	code, body, err := c.do(ctx, http.MethodPost, "/tasks", req)
	if err != nil {
		return task.Task{}, &task.NetworkError{Op: op, Err: err}
	}
	return decodeWrite(op, "", code, body)
}

// Update applies a partial update and returns the server's record.
func (c *Client) Update(ctx context.Context, id task.ID, patch task.Patch) (task.Task, error) {
	const op = "update task"

	code, body, err := c.do(ctx, http.MethodPut, taskPath(id), patch)
	if err != nil {
		return task.Task{}, &task.NetworkError{Op: op, Err: err}
	}
	return decodeWrite(op, id, code, body)
}

// Remove deletes a task. Any 2xx response is success.
func (c *Client) Remove(ctx context.Context, id task.ID) error {
	const op = "delete task"

	code, body, err := c.do(ctx, http.MethodDelete, taskPath(id), nil)
	if err != nil {
		return &task.NetworkError{Op: op, Err: err}
	}
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return &task.NotFoundError{ID: id}
	default:
		return &task.NetworkError{Op: op, Err: unexpectedStatus(code, body)}
	}
}

func decodeWrite(op string, id task.ID, code int, body []byte) (task.Task, error) {
	if code == http.StatusNotFound {
		return task.Task{}, &task.NotFoundError{ID: id}
	}

	var resp writeResponse
	if err := sonic.ConfigStd.Unmarshal(body, &resp); err != nil {
		return task.Task{}, &task.NetworkError{Op: op, Err: fmt.Errorf("malformed response (status %d): %w", code, err)}
	}

	if code >= 200 && code < 300 {
		if !resp.Success || resp.Data == nil {
			return task.Task{}, &task.NetworkError{Op: op, Err: errors.New("server did not return the task")}
		}
		if resp.Data.ID.IsZero() {
			return task.Task{}, &task.NetworkError{Op: op, Err: errors.New("server returned a task without id")}
		}
		return *resp.Data, nil
	}

	if code >= 400 && code < 500 && resp.Error != "" {
		return task.Task{}, &task.ValidationError{Message: resp.Error}
	}
	return task.Task{}, &task.NetworkError{Op: op, Err: unexpectedStatus(code, body)}
}

// do sends one request and returns the status code and body.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := sonic.ConfigStd.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	entry := c.log.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"request_id": reqID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		entry.WithError(err).Debug("reading response failed")
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	entry.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("request done")

	return resp.StatusCode, body, nil
}

func taskPath(id task.ID) string {
	return "/tasks/" + url.PathEscape(id.String())
}

func unexpectedStatus(code int, body []byte) error {
	var resp writeResponse
	if err := sonic.ConfigStd.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return fmt.Errorf("unexpected status %d: %s", code, resp.Error)
	}
	return fmt.Errorf("unexpected status %d", code)
}
