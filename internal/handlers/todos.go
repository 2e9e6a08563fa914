package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/tmiyata/todo-service/internal/models"
	"github.com/tmiyata/todo-service/internal/storage"
)

// TodoHandler serves the REST routes for the todos resource.
type TodoHandler struct {
	store storage.Store
}

func NewTodoHandler(store storage.Store) *TodoHandler {
	return &TodoHandler{
		store: store,
	}
}

// Register mounts the todo routes on e.
func (h *TodoHandler) Register(e *echo.Echo) {
	e.GET("/api/todos", h.List)
	e.POST("/api/todos", h.Create)
	e.PATCH("/api/todos/:id", h.Update)
	e.DELETE("/api/todos/:id", h.Delete)
}

type errorResponse struct {
	Message string         `json:"message"`
	Issues  []models.Issue `json:"issues,omitempty"`
}

type todosResponse struct {
	Todos []models.Todo `json:"todos"`
}

type todoResponse struct {
	Todo models.Todo `json:"todo"`
}

type deletedResponse struct {
	DeletedID string `json:"deletedId"`
}

// List handles GET /api/todos.
func (h *TodoHandler) List(c echo.Context) error {
	todos, err := h.store.GetTodos(c.Request().Context())
	if err != nil {
		log.Printf("Error fetching todos: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Failed to fetch todos"})
	}
	return c.JSON(http.StatusOK, todosResponse{Todos: todos})
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(c echo.Context) error {
	var req models.CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid payload"})
	}
	if issues := req.Validate(); issues != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid payload", Issues: issues})
	}

	todo, err := h.store.CreateTodo(c.Request().Context(), req.Title, req.Description)
	if err != nil {
		log.Printf("Error creating todo: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Failed to create todo"})
	}
	return c.JSON(http.StatusCreated, todoResponse{Todo: *todo})
}

// Update handles PATCH /api/todos/:id.
func (h *TodoHandler) Update(c echo.Context) error {
	id := todoID(c)
	if id == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Missing todo id"})
	}

	var req models.UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid payload"})
	}
	if issues := req.Validate(); issues != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid payload", Issues: issues})
	}

	todo, err := h.store.UpdateTodo(c.Request().Context(), id, req.Patch())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Message: "Todo not found"})
		}
		log.Printf("Error updating todo %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Failed to update todo"})
	}
	return c.JSON(http.StatusOK, todoResponse{Todo: *todo})
}

// Delete handles DELETE /api/todos/:id. Deletion is idempotent: the id
// is echoed back whether or not a row matched.
func (h *TodoHandler) Delete(c echo.Context) error {
	id := todoID(c)
	if id == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Missing todo id"})
	}

	if err := h.store.DeleteTodo(c.Request().Context(), id); err != nil {
		log.Printf("Error deleting todo %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Failed to delete todo"})
	}
	return c.JSON(http.StatusOK, deletedResponse{DeletedID: id})
}

// todoID extracts the id from the last path segment, percent-decoded.
// Router param values may still be escaped depending on how the request
// was built.
func todoID(c echo.Context) string {
	id := c.Param("id")
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	return id
}
