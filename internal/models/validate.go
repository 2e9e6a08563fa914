package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CreateTodoRequest is the POST /api/todos body.
type CreateTodoRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateTodoRequest is the PATCH /api/todos/:id body. Every field is
// optional, but at least one must be present.
type UpdateTodoRequest struct {
	Title       OptString  `json:"title"`
	Description NullString `json:"description"`
	IsCompleted OptBool    `json:"isCompleted"`
}

// Patch converts the request into the sparse patch handed to storage.
func (r UpdateTodoRequest) Patch() TodoPatch {
	return TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
	}
}

// Issue is one field-level validation failure reported in 400 responses.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the create payload and returns the issues, nil if valid.
func (r CreateTodoRequest) Validate() []Issue {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{Field: fe.Field(), Message: issueMessage(fe.Field(), fe.Tag(), fe.Param())})
	}
	return issues
}

// Validate checks the update payload and returns the issues, nil if valid.
func (r UpdateTodoRequest) Validate() []Issue {
	if r.Patch().IsEmpty() {
		return []Issue{{Message: "At least one field must be provided"}}
	}
	var issues []Issue
	if r.Title.Set {
		issues = append(issues, varIssues("title", r.Title.Value, "required,max=200")...)
	}
	if r.Description.Set && r.Description.Valid {
		issues = append(issues, varIssues("description", r.Description.Value, "max=1000")...)
	}
	return issues
}

func varIssues(field string, value any, tag string) []Issue {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{Field: field, Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{Field: field, Message: issueMessage(field, fe.Tag(), fe.Param())})
	}
	return issues
}

func issueMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s must not be empty", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
