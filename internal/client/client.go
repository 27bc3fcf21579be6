// Package client is a Go API client that keeps a local mirror of the
// caller's tasks. The mirror only ever reflects what the server confirmed:
// mutations apply the server's returned record, deletions remove locally
// after the server acknowledged, and failures leave the mirror untouched and
// are returned to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"task-board/backend/internal/models"
	"task-board/backend/internal/services"
)

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
	user  models.PublicUser
	tasks []models.Task
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// APIError is a non-2xx response decoded into the server's error shape.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

type authResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (c *Client) Signup(ctx context.Context, email, password string) (models.PublicUser, error) {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

func (c *Client) Login(ctx context.Context, email, password string) (models.PublicUser, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (models.PublicUser, error) {
	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return models.PublicUser{}, err
	}

	c.mu.Lock()
	c.token = resp.Token
	c.user = resp.User
	c.mu.Unlock()

	return resp.User, nil
}

// SetToken restores a persisted session token, e.g. one stored by a previous
// run. RestoreSession validates it against the server.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// RestoreSession resolves the current token to its user. On failure the
// session is cleared and the caller must log in again.
func (c *Client) RestoreSession(ctx context.Context) (models.PublicUser, error) {
	var user models.PublicUser
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		c.Logout()
		return models.PublicUser{}, err
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
	return user, nil
}

// Logout drops the token and the mirror. Tokens are stateless, so there is
// nothing to revoke server-side.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = ""
	c.user = models.PublicUser{}
	c.tasks = nil
	c.mu.Unlock()
}

// Tasks returns a copy of the local mirror.
func (c *Client) Tasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tasks := make([]models.Task, len(c.tasks))
	copy(tasks, c.tasks)
	return tasks
}

// FetchTasks replaces the mirror with the server's task list.
func (c *Client) FetchTasks(ctx context.Context) error {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return err
	}

	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()
	return nil
}

// AddTask creates a task and appends the server's record to the mirror.
func (c *Client) AddTask(ctx context.Context, input services.TaskInput) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, &task); err != nil {
		return models.Task{}, err
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	c.mu.Unlock()
	return task, nil
}

// UpdateTask applies the server's returned record to the mirror, never the
// local guess.
func (c *Client) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, update, &task); err != nil {
		return models.Task{}, err
	}

	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i] = task
			break
		}
	}
	c.mu.Unlock()
	return task, nil
}

// DeleteTask removes the task from the mirror only after the server
// confirmed the deletion.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil {
			apiErr.Code = "unknown"
			apiErr.Message = string(data)
		}
		return apiErr
	}

	if dest != nil {
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
