package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tmiyata/todo-service/internal/config"
	"github.com/tmiyata/todo-service/internal/handlers"
	"github.com/tmiyata/todo-service/internal/storage"
	"github.com/tmiyata/todo-service/internal/storage/postgrest"
	"github.com/tmiyata/todo-service/internal/storage/sqlite"
	"github.com/tmiyata/todo-service/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open todo store: %v", err)
	}
	defer store.Close()

	todoHandler := handlers.NewTodoHandler(store)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	todoHandler.Register(e)
	web.Register(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	log.Printf("Server starting on port %s (store driver: %s)", cfg.Port, cfg.StoreDriver)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath)
	default:
		return postgrest.New(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	}
}
