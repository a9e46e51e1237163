// Package api is the typed HTTP client for the school backend. Every call
// returns either a decoded payload or an *Error tagged with a Kind.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vidyalink/app/internal/config"
	"vidyalink/app/internal/ids"
)

const requestIDHeader = "X-Request-Id"

// TokenSource yields the current bearer token, or "" when unauthenticated.
type TokenSource func(ctx context.Context) string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     zerolog.Logger
}

func New(cfg config.APIConfig, token TokenSource, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if token == nil {
		token = func(context.Context) string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
		log:     log,
	}
}

// do performs one request and decodes the body into out. Non-2xx statuses
// and transport failures come back as *Error; out is only touched on success.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, ids.NewRequestID())
	if authed {
		token := c.token(ctx)
		if token == "" {
			return &Error{Kind: KindAuth, Message: "not logged in"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return networkError(err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Msg("api request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return statusError(resp.StatusCode, env.Message)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Kind: KindServer, Status: resp.StatusCode,
				Message: "unexpected response body", cause: err}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, true)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, true)
}

// rejected converts a success=false envelope on a 2xx response into an error.
func rejected(env envelope) *Error {
	message := env.Message
	if message == "" {
		message = "Request failed"
	}
	return &Error{Kind: KindServer, Message: message}
}
