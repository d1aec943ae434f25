package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/memolish/memolish/internal/errors"
)

// Client wraps outbound calls to the Memolish backend. Every request carries
// the configured session identifier as an opaque X-Session-Id header (omitted
// when no session is configured; the backend rejects those) and a fresh ULID
// X-Request-Id for correlation. No timeout is set at this layer; failure is
// driven by the transport's own error signaling.
type Client struct {
	baseURL   string
	sessionID string
	http      *http.Client
}

// NewClient creates a client for the backend at baseURL. sessionID may be
// empty; the identity header is then omitted.
func NewClient(baseURL, sessionID string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: sessionID,
		http:      &http.Client{},
	}
}

// SessionID returns the session identifier the client forwards, if any.
func (c *Client) SessionID() string {
	return c.sessionID
}

// do performs one HTTP request and decodes a 2xx JSON response into out.
// out may be nil for responses with no body of interest (e.g. DELETE 204).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewInternal(err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.NewInternal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionID != "" {
		req.Header.Set("X-Session-Id", c.sessionID)
	}
	req.Header.Set("X-Request-Id", newRequestID())

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewInternal(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// errorEnvelope is the backend's error payload shape. FastAPI wraps errors
// in a "detail" field that is either a plain string or a structured object
// with a code (e.g. {"detail": {"code": "NO_CREDITS", "message": "..."}}).
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeError translates a non-2xx response into a structured error,
// surfacing the backend's code unmodified so the store can branch on it.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Detail) > 0 {
		var detail errorDetail
		if err := json.Unmarshal(env.Detail, &detail); err == nil && detail.Code != "" {
			return errors.NewBackend(resp.StatusCode, detail.Code, detail.Message)
		}
		var msg string
		if err := json.Unmarshal(env.Detail, &msg); err == nil {
			return backendByStatus(resp.StatusCode, msg)
		}
	}

	return backendByStatus(resp.StatusCode, strings.TrimSpace(string(body)))
}

// backendByStatus maps well-known HTTP statuses to their error constructors.
func backendByStatus(status int, msg string) error {
	switch status {
	case http.StatusUnauthorized:
		return errors.NewUnauthenticated(msg)
	case http.StatusNotFound:
		return errors.NewNotFound(msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errors.NewInvalidRequest(msg)
	default:
		return errors.NewBackend(status, "", msg)
	}
}

// newRequestID generates a ULID for request correlation.
func newRequestID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		// rand.Reader failures are not worth failing the request over
		return ""
	}
	return id.String()
}
