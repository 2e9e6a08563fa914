// Package sqlite provides a SQLite-backed todo store for local
// development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmiyata/todo-service/internal/models"
	"github.com/tmiyata/todo-service/internal/storage"
	"github.com/tmiyata/todo-service/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists todos in a local SQLite database.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := sqlDB.Exec(string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetTodos implements storage.Store. rowid breaks ties between rows
// created in the same millisecond.
func (s *Store) GetTodos(ctx context.Context) ([]models.Todo, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, title, description, is_completed, created_at
		 FROM todos
		 ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

// CreateTodo implements storage.Store.
func (s *Store) CreateTodo(ctx context.Context, title string, description *string) (*models.Todo, error) {
	todo := models.Todo{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		IsCompleted: false,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	var desc sql.NullString
	if description != nil {
		desc = sql.NullString{String: *description, Valid: true}
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO todos (id, title, description, is_completed, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		todo.ID, todo.Title, desc, todo.IsCompleted, todo.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return &todo, nil
}

// UpdateTodo implements storage.Store. Read and write share a
// transaction so the returned record matches what was stored.
func (s *Store) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(
		ctx,
		`SELECT id, title, description, is_completed, created_at
		 FROM todos WHERE id = ?`,
		id,
	)
	current, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(current)
	var desc sql.NullString
	if updated.Description != nil {
		desc = sql.NullString{String: *updated.Description, Valid: true}
	}
	_, err = tx.ExecContext(
		ctx,
		`UPDATE todos SET title = ?, description = ?, is_completed = ? WHERE id = ?`,
		updated.Title, desc, updated.IsCompleted, updated.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &updated, nil
}

// DeleteTodo implements storage.Store. Matching no row is fine.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (models.Todo, error) {
	var (
		todo      models.Todo
		desc      sql.NullString
		completed int64
		createdAt int64
	)
	if err := row.Scan(&todo.ID, &todo.Title, &desc, &completed, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Todo{}, err
		}
		return models.Todo{}, fmt.Errorf("scan todo: %w", err)
	}
	if desc.Valid {
		value := desc.String
		todo.Description = &value
	}
	todo.IsCompleted = completed != 0
	todo.CreatedAt = time.UnixMilli(createdAt).UTC()
	return todo, nil
}
