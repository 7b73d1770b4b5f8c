package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/magwach/twitter/internal/router"
	"github.com/magwach/twitter/pkg/config"
	"github.com/magwach/twitter/pkg/media"
	"github.com/magwach/twitter/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB() // Ensure database connection is closed when main exits

	// Initialize media storage
	mediaStore, err := media.NewDiskStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Mongo, mediaStore)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
