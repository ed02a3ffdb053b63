// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is the HTTP client for the content backend. Every request
// carries the bearer token of the current session when one is stored.
package apiclient

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
)

const (
	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 10 << 20
)

// TokenSource yields the bearer token for the request context.
type TokenSource interface {
	Token(ctx context.Context) string
}

type tokenKey struct{}

// ContextWithToken pins the bearer token for requests made with ctx. Work that
// outlives the HTTP request uses it instead of the session.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) token(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token(ctx)
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// MessageOf returns the backend message carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client talks to the backend REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource

	onUnauthorized func(ctx context.Context)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUnauthorizedHandler sets fn to run with the request context when the
// backend rejects a bearer token with 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve turns a relative API path or an absolute URL into a request URL.
func (c *Client) resolve(target string, query url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimLeft(target, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing path %q: %w", target, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

type requestOptions struct {
	query       url.Values
	body        io.Reader
	contentType string
	anonymous   bool
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, method, target string, ro requestOptions) ([]byte, error) {
	reqURL, err := c.resolve(target, ro.query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, ro.body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if ro.contentType != "" {
		req.Header.Set("Content-Type", ro.contentType)
	}
	// The token never leaves the backend host.
	bearer := false
	if !ro.anonymous && req.URL.Host == c.baseURL.Host {
		if token := c.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			bearer = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(respBody, resp.Status),
			Body:    respBody,
		}
		if bearer && c.onUnauthorized != nil && IsUnauthorized(apiErr) {
			c.onUnauthorized(ctx)
		}
		return nil, apiErr
	}

	return respBody, nil
}

// doJSON sends body as JSON and decodes the response into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, target string, query url.Values, body, out any) error {
	ro := requestOptions{query: query}
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		ro.body = bytes.NewReader(jsonBody)
		ro.contentType = "application/json"
	}

	respBody, err := c.send(ctx, method, target, ro)
	if err != nil {
		return err
	}
	return decodeInto(respBody, out)
}

// DoRaw posts body as JSON to target, which may be an API path or an
// absolute URL, and returns the undecoded response body. Requests to another
// host are sent without the bearer token.
func (c *Client) DoRaw(ctx context.Context, target string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return c.send(ctx, http.MethodPost, target, requestOptions{
		body:        bytes.NewReader(jsonBody),
		contentType: "application/json",
	})
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// errorMessage extracts a human readable message from an error body.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if s, ok := payload.Error.(string); ok && s != "" {
			return s
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return status
}

// statusResponse is the {success, message} body of mutating endpoints.
type statusResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// deleteResource issues DELETE and treats an explicit success=false as failure.
func (c *Client) deleteResource(ctx context.Context, target string) error {
	respBody, err := c.send(ctx, http.MethodDelete, target, requestOptions{})
	if err != nil {
		return err
	}
	var status statusResponse
	if json.Unmarshal(respBody, &status) == nil && status.Success != nil && !*status.Success {
		return &APIError{Status: http.StatusOK, Message: status.Message, Body: respBody}
	}
	return nil
}
