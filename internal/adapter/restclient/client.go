// Package restclient talks to a jsonplaceholder-style /users REST API.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "user-crud-console/internal/domain/user"
	apperrors "user-crud-console/pkg/errors"
	"user-crud-console/pkg/logger"
)

const (
	usersPath      = "/users"
	defaultTimeout = 10 * time.Second
	// maxErrorBody caps how much of a failed response body is logged.
	maxErrorBody = 512
)

// Client implements userstore.Client over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every user.
func (c *Client) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if _, err := c.do(ctx, http.MethodGet, usersPath, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create posts a new user and returns the server's representation.
func (c *Client) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	var created domain.User
	if _, err := c.do(ctx, http.MethodPost, usersPath, &u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces the user with id and returns the server's representation.
func (c *Client) Update(ctx context.Context, id int64, u domain.User) (*domain.User, error) {
	var updated domain.User
	if _, err := c.do(ctx, http.MethodPut, userPath(id), &u, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the user with id. The response status is returned as is; err is set
// only when no response was received.
func (c *Client) Delete(ctx context.Context, id int64) (int, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, userPath(id), nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// do sends body as JSON and decodes a 2xx response into out. Any other status is
// reported as *apperrors.StatusError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return 0, err
	}

	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("remote API returned an error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet))
		return resp.StatusCode, &apperrors.StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	requestID := logger.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(logger.RequestIDHeader, requestID)

	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(logger.RequestIDHeader)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.log.Error("request failed", append(fields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to execute %s %s: %w", req.Method, req.URL.Path, err)
	}
	c.log.Debug("request completed", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}

func userPath(id int64) string {
	return usersPath + "/" + strconv.FormatInt(id, 10)
}
