// Package client is a typed HTTP client for the task manager API.
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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response decoded from the {"message"} envelope.
type APIError struct {
	Status     int
	Message    string
	TasksCount int64
}

func (e *APIError) Error() string {
	if e.TasksCount > 0 {
		return fmt.Sprintf("api: %d %s (tasks: %d)", e.Status, e.Message, e.TasksCount)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token in use, e.g. after Login.
func (c *Client) Token() string { return c.token }

// --- Auth ---

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", nil, body, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-email", nil, map[string]string{"token": token}, nil)
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	var resp struct {
		Token string       `json:"token"`
		User  *domain.User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// --- Categories ---

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	var out domain.Category
	if err := c.do(ctx, http.MethodPost, "/categories", nil, map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, nil)
}

// --- Tasks ---

// TaskQuery narrows ListTasks on the server. Empty fields are not sent.
type TaskQuery struct {
	Status   string
	Priority string
	Category string
	Search   string
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	for key, val := range map[string]string{
		"status":   q.Status,
		"priority": q.Priority,
		"category": q.Category,
		"search":   q.Search,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]domain.Task, error) {
	var out []domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewTask is the body of CreateTask. DueDate is YYYY-MM-DD or RFC 3339.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Category    string `json:"category"`
}

func (c *Client) CreateTask(ctx context.Context, t NewTask) (*domain.Task, error) {
	var out domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTaskStatus patches only the status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	var out domain.Task
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*ports.TaskStats, error) {
	var out ports.TaskStats
	if err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Calendar(ctx context.Context, month time.Time) ([]ports.CalendarDay, error) {
	var out []ports.CalendarDay
	q := url.Values{"month": {month.Format("2006-01")}}
	if err := c.do(ctx, http.MethodGet, "/tasks/calendar", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env struct {
			Message    string `json:"message"`
			TasksCount int64  `json:"tasksCount"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
			apiErr.Message, apiErr.TasksCount = env.Message, env.TasksCount
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
