package models

import (
	"time"
)

// Todo represents a todo item
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// TodoPatch is a sparse update: only fields that were explicitly supplied
// are carried, so untouched columns keep their prior values.
type TodoPatch struct {
	Title       OptString
	Description NullString
	IsCompleted OptBool
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TodoPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.IsCompleted.Set
}

// Fields returns the patch as column name -> new value, nil for an
// explicit null. Only supplied fields appear in the map.
func (p TodoPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Title.Set {
		fields["title"] = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Valid {
			fields["description"] = p.Description.Value
		} else {
			fields["description"] = nil
		}
	}
	if p.IsCompleted.Set {
		fields["is_completed"] = p.IsCompleted.Value
	}
	return fields
}

// Apply merges the patch into a copy of todo and returns it.
func (p TodoPatch) Apply(todo Todo) Todo {
	if p.Title.Set {
		todo.Title = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Valid {
			value := p.Description.Value
			todo.Description = &value
		} else {
			todo.Description = nil
		}
	}
	if p.IsCompleted.Set {
		todo.IsCompleted = p.IsCompleted.Value
	}
	return todo
}
