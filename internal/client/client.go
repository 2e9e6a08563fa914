// Package client is a typed client for the todo REST API.
package client

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

	"github.com/tmiyata/todo-service/internal/models"
)

// APIError is a non-2xx response. When the server sent a JSON error body
// its message and issues are carried along; otherwise only the status.
type APIError struct {
	StatusCode int
	Message    string
	Issues     []models.Issue
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client talks to a todo service at a base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// GetTodos lists every todo, newest first.
func (c *Client) GetTodos(ctx context.Context) ([]models.Todo, error) {
	var out struct {
		Todos []models.Todo `json:"todos"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &out); err != nil {
		return nil, err
	}
	return out.Todos, nil
}

// CreateTodo creates one todo.
func (c *Client) CreateTodo(ctx context.Context, title string, description *string) (*models.Todo, error) {
	payload := models.CreateTodoRequest{Title: title, Description: description}
	var out struct {
		Todo models.Todo `json:"todo"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/todos", payload, &out); err != nil {
		return nil, err
	}
	return &out.Todo, nil
}

// UpdateTodo applies a sparse patch to one todo.
func (c *Client) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	var out struct {
		Todo models.Todo `json:"todo"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+url.PathEscape(id), patchBody(patch), &out); err != nil {
		return nil, err
	}
	return &out.Todo, nil
}

// DeleteTodo removes one todo and returns the deleted id.
func (c *Client) DeleteTodo(ctx context.Context, id string) (string, error) {
	var out struct {
		DeletedID string `json:"deletedId"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, &out); err != nil {
		return "", err
	}
	return out.DeletedID, nil
}

// patchBody maps a sparse patch onto the PATCH route's field names,
// keeping absent, null, and value distinct.
func patchBody(patch models.TodoPatch) map[string]any {
	body := make(map[string]any)
	if patch.Title.Set {
		body["title"] = patch.Title.Value
	}
	if patch.Description.Set {
		if patch.Description.Valid {
			body["description"] = patch.Description.Value
		} else {
			body["description"] = nil
		}
	}
	if patch.IsCompleted.Set {
		body["isCompleted"] = patch.IsCompleted.Value
	}
	return body
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError decodes the server's structured error body when the response
// declares JSON, and falls back to a bare status error otherwise.
func apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var body struct {
			Message string         `json:"message"`
			Issues  []models.Issue `json:"issues"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Message = body.Message
			apiErr.Issues = body.Issues
		}
	}
	return apiErr
}
