// Package storage defines the store contract the todo service runs on.
package storage

import (
	"context"
	"errors"

	"github.com/tmiyata/todo-service/internal/models"
)

// ErrNotFound is returned when an update targets an id no row has.
var ErrNotFound = errors.New("todo not found")

// Store is the four-operation persistence boundary. Each call is a single
// atomic store operation: no retries, no cross-record transactions.
type Store interface {
	// GetTodos returns every todo ordered by creation time, newest first.
	// An empty store yields an empty slice, not nil.
	GetTodos(ctx context.Context) ([]models.Todo, error)

	// CreateTodo inserts one todo and returns the fully populated record,
	// id and created_at assigned on the store side.
	CreateTodo(ctx context.Context, title string, description *string) (*models.Todo, error)

	// UpdateTodo applies a sparse patch to the row with the given id and
	// returns the updated record. ErrNotFound if no row matched.
	UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)

	// DeleteTodo removes the row with the given id. Deleting an id that
	// does not exist is not an error.
	DeleteTodo(ctx context.Context, id string) error

	// Close releases the underlying handle.
	Close() error
}
