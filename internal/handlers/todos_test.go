package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmiyata/todo-service/internal/models"
	"github.com/tmiyata/todo-service/internal/storage"
)

// stubStore records calls and plays back canned results.
type stubStore struct {
	todos     []models.Todo
	todo      *models.Todo
	err       error
	calls     int
	lastPatch models.TodoPatch
	lastID    string
}

func (s *stubStore) GetTodos(ctx context.Context) ([]models.Todo, error) {
	s.calls++
	return s.todos, s.err
}

func (s *stubStore) CreateTodo(ctx context.Context, title string, description *string) (*models.Todo, error) {
	s.calls++
	return s.todo, s.err
}

func (s *stubStore) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	s.calls++
	s.lastID = id
	s.lastPatch = patch
	return s.todo, s.err
}

func (s *stubStore) DeleteTodo(ctx context.Context, id string) error {
	s.calls++
	s.lastID = id
	return s.err
}

func (s *stubStore) Close() error {
	return nil
}

func doRequest(store storage.Store, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	NewTodoHandler(store).Register(e)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestList(t *testing.T) {
	t.Run("returns todos", func(t *testing.T) {
		desc := "with description"
		store := &stubStore{todos: []models.Todo{
			{ID: "1", Title: "a", Description: &desc, CreatedAt: time.Now().UTC()},
		}}
		rec := doRequest(store, http.MethodGet, "/api/todos", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Todos []models.Todo `json:"todos"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Todos, 1)
		assert.Equal(t, "a", body.Todos[0].Title)
	})

	t.Run("empty list serializes as an array", func(t *testing.T) {
		store := &stubStore{todos: []models.Todo{}}
		rec := doRequest(store, http.MethodGet, "/api/todos", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"todos":[]}`, rec.Body.String())
	})

	t.Run("store error masks detail", func(t *testing.T) {
		store := &stubStore{err: assert.AnError}
		rec := doRequest(store, http.MethodGet, "/api/todos", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message":"Failed to fetch todos"}`, rec.Body.String())
	})
}

func TestCreate(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		store := &stubStore{todo: &models.Todo{ID: "1", Title: "Buy milk"}}
		rec := doRequest(store, http.MethodPost, "/api/todos", `{"title":"Buy milk"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var body struct {
			Todo models.Todo `json:"todo"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Buy milk", body.Todo.Title)
		assert.False(t, body.Todo.IsCompleted)
	})

	t.Run("empty title never reaches the store", func(t *testing.T) {
		store := &stubStore{}
		rec := doRequest(store, http.MethodPost, "/api/todos", `{"title":""}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, store.calls)
		var body struct {
			Message string         `json:"message"`
			Issues  []models.Issue `json:"issues"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Invalid payload", body.Message)
		require.NotEmpty(t, body.Issues)
		assert.Equal(t, "title", body.Issues[0].Field)
	})

	t.Run("oversized title never reaches the store", func(t *testing.T) {
		store := &stubStore{}
		payload := `{"title":"` + strings.Repeat("a", 201) + `"}`
		rec := doRequest(store, http.MethodPost, "/api/todos", payload)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, store.calls)
	})

	t.Run("malformed JSON is a client error", func(t *testing.T) {
		store := &stubStore{}
		rec := doRequest(store, http.MethodPost, "/api/todos", `{"title":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, store.calls)
	})

	t.Run("store error masks detail", func(t *testing.T) {
		store := &stubStore{err: assert.AnError}
		rec := doRequest(store, http.MethodPost, "/api/todos", `{"title":"Buy milk"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message":"Failed to create todo"}`, rec.Body.String())
	})
}

func TestUpdate(t *testing.T) {
	t.Run("sparse patch reaches the store", func(t *testing.T) {
		store := &stubStore{todo: &models.Todo{ID: "1", Title: "t", IsCompleted: true}}
		rec := doRequest(store, http.MethodPatch, "/api/todos/1", `{"isCompleted":true}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", store.lastID)
		assert.True(t, store.lastPatch.IsCompleted.Set)
		assert.False(t, store.lastPatch.Title.Set)
		assert.False(t, store.lastPatch.Description.Set)
	})

	t.Run("empty body rejected before the store", func(t *testing.T) {
		store := &stubStore{}
		rec := doRequest(store, http.MethodPatch, "/api/todos/1", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, store.calls)
		assert.Contains(t, rec.Body.String(), "At least one field must be provided")
	})

	t.Run("null completion flag rejected before the store", func(t *testing.T) {
		store := &stubStore{todo: &models.Todo{ID: "1", IsCompleted: true}}
		rec := doRequest(store, http.MethodPatch, "/api/todos/1", `{"isCompleted":null}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, store.calls)
	})

	t.Run("null title rejected before the store", func(t *testing.T) {
		store := &stubStore{}
		rec := doRequest(store, http.MethodPatch, "/api/todos/1", `{"title":null}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, store.calls)
	})

	t.Run("unknown id maps to 404", func(t *testing.T) {
		store := &stubStore{err: storage.ErrNotFound}
		rec := doRequest(store, http.MethodPatch, "/api/todos/missing", `{"isCompleted":true}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"message":"Todo not found"}`, rec.Body.String())
	})

	t.Run("escaped id is decoded from the path", func(t *testing.T) {
		store := &stubStore{todo: &models.Todo{ID: "a b"}}
		rec := doRequest(store, http.MethodPatch, "/api/todos/a%20b", `{"isCompleted":true}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a b", store.lastID)
	})

	t.Run("store error masks detail", func(t *testing.T) {
		store := &stubStore{err: assert.AnError}
		rec := doRequest(store, http.MethodPatch, "/api/todos/1", `{"isCompleted":true}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message":"Failed to update todo"}`, rec.Body.String())
	})
}

func TestDelete(t *testing.T) {
	t.Run("echoes the deleted id", func(t *testing.T) {
		store := &stubStore{}
		rec := doRequest(store, http.MethodDelete, "/api/todos/some-id", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"deletedId":"some-id"}`, rec.Body.String())
		assert.Equal(t, "some-id", store.lastID)
	})

	t.Run("store error masks detail", func(t *testing.T) {
		store := &stubStore{err: assert.AnError}
		rec := doRequest(store, http.MethodDelete, "/api/todos/some-id", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message":"Failed to delete todo"}`, rec.Body.String())
	})
}
