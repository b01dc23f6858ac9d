// Package client talks to the tasks API on behalf of a single user.
//
// A Session holds the user id and the CSRF token explicitly. Every mutating
// or listing call sends both as headers, and a call rejected because the
// token expired is retried once with a freshly issued token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tasks-api/internal/domain"
)

const (
	headerCSRFToken = "X-CSRF-Token"
	headerUserID    = "X-User-Id"

	msgTokenExpired = "CSRF token expired"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TokenExpired reports whether the gate rejected the request for an expired token.
func (e *APIError) TokenExpired() bool {
	return e.Status == http.StatusForbidden && e.Message == msgTokenExpired
}

// Session is the per-user client state.
type Session struct {
	UserID int64
	Token  string
}

// Client is safe for concurrent use; Sessions are not.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session fetches a token for userID and returns a ready Session.
func (c *Client) Session(ctx context.Context, userID int64) (*Session, error) {
	s := &Session{UserID: userID}
	if err := c.Refresh(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh replaces the session token with the one the server currently issues.
func (c *Client) Refresh(ctx context.Context, s *Session) error {
	var out struct {
		CSRFToken string `json:"csrfToken"`
	}
	path := "/csrf-token/" + strconv.FormatInt(s.UserID, 10)
	if err := c.send(ctx, nil, http.MethodGet, path, nil, &out); err != nil {
		return fmt.Errorf("fetch csrf token: %w", err)
	}
	if out.CSRFToken == "" {
		return errors.New("fetch csrf token: empty token in response")
	}
	s.Token = out.CSRFToken
	return nil
}

// TaskList is the listing response.
type TaskList struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// ListTasks lists the session user's tasks.
func (c *Client) ListTasks(ctx context.Context, s *Session) (*TaskList, error) {
	q := url.Values{"user_id": {strconv.FormatInt(s.UserID, 10)}}
	var out TaskList
	if err := c.do(ctx, s, http.MethodGet, "/tasks?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
}

type taskEnvelope struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

func (c *Client) CreateTask(ctx context.Context, s *Session, in CreateTaskInput) (*domain.Task, error) {
	body := struct {
		UserID int64 `json:"user_id"`
		CreateTaskInput
	}{UserID: s.UserID, CreateTaskInput: in}

	var out taskEnvelope
	if err := c.do(ctx, s, http.MethodPost, "/task", body, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

// UpdateTaskInput fields left nil are not sent.
type UpdateTaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (c *Client) UpdateTask(ctx context.Context, s *Session, id int64, in UpdateTaskInput) (*domain.Task, error) {
	var out taskEnvelope
	if err := c.do(ctx, s, http.MethodPatch, "/task/"+strconv.FormatInt(id, 10), in, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, s *Session, id int64) error {
	return c.do(ctx, s, http.MethodDelete, "/task/"+strconv.FormatInt(id, 10), nil, nil)
}

// do sends a gated request, refreshing the token and retrying once when it expired.
func (c *Client) do(ctx context.Context, s *Session, method, path string, in, out any) error {
	if s.Token == "" {
		if err := c.Refresh(ctx, s); err != nil {
			return err
		}
	}
	err := c.send(ctx, s, method, path, in, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.TokenExpired() {
		return err
	}
	if err := c.Refresh(ctx, s); err != nil {
		return err
	}
	return c.send(ctx, s, method, path, in, out)
}

func (c *Client) send(ctx context.Context, s *Session, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		req.Header.Set(headerCSRFToken, s.Token)
		req.Header.Set(headerUserID, strconv.FormatInt(s.UserID, 10))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
