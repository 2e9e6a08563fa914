// Package postgrest implements the todo store against a hosted
// PostgREST-compatible table endpoint such as Supabase.
package postgrest

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
	"github.com/tmiyata/todo-service/internal/storage"
)

const defaultTimeout = 10 * time.Second

// Store is a typed handle to the hosted todos table.
type Store struct {
	endpoint string
	key      string
	client   *http.Client
}

// New creates a store for the given project URL and access key.
func New(baseURL, key string) (*Store, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("store URL is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("store access key is required")
	}
	return &Store{
		endpoint: strings.TrimRight(baseURL, "/") + "/rest/v1/todos",
		key:      key,
		client:   &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Close implements storage.Store. The HTTP client holds no resources
// that outlive its idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// GetTodos implements storage.Store.
func (s *Store) GetTodos(ctx context.Context) ([]models.Todo, error) {
	rows, err := s.do(ctx, http.MethodGet, "select=*&order=created_at.desc", nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch todos: %w", err)
	}
	if rows == nil {
		rows = []models.Todo{}
	}
	return rows, nil
}

// CreateTodo implements storage.Store.
func (s *Store) CreateTodo(ctx context.Context, title string, description *string) (*models.Todo, error) {
	payload := map[string]any{
		"title":       title,
		"description": description,
	}
	rows, err := s.do(ctx, http.MethodPost, "select=*", payload, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("todo insert returned no row")
	}
	return &rows[0], nil
}

// UpdateTodo implements storage.Store.
func (s *Store) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	query := "select=*&id=eq." + url.QueryEscape(id)
	rows, err := s.do(ctx, http.MethodPatch, query, patch.Fields(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}
	return &rows[0], nil
}

// DeleteTodo implements storage.Store.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	query := "id=eq." + url.QueryEscape(id)
	if _, err := s.do(ctx, http.MethodDelete, query, nil, false); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// do runs one table request and decodes the returned rows, if any.
// representation asks PostgREST to echo affected rows back.
func (s *Store) do(ctx context.Context, method, rawQuery string, payload any, representation bool) ([]models.Todo, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+"?"+rawQuery, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if representation {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is never
		// surfaced to callers.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("store responded with status %d", resp.StatusCode)
	}

	if method == http.MethodDelete || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var rows []models.Todo
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}
