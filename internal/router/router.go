package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/magwach/twitter/internal/engine"
	"github.com/magwach/twitter/internal/handlers"
	"github.com/magwach/twitter/internal/middleware"
	"github.com/magwach/twitter/internal/repositories"
	"github.com/magwach/twitter/pkg/config"
	"github.com/magwach/twitter/pkg/media"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, mgClient *mongo.Client, mediaStore media.Store) {
	db := mgClient.Database("twitter")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.Static(cfg.MediaBaseURL, cfg.MediaDir)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)

	// --- Core components ---
	eng := engine.New(userRepo, postRepo, notificationRepo, mediaStore)
	feed := engine.NewFeed(userRepo, postRepo)

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authGroup := e.Group("/api/v1/auth")
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	api.GET("/auth/user", authHandler.GetMe)

	// User profile and follow routes
	userHandler := handlers.NewUserHandler(userRepo, eng, mediaStore)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Post and feed routes
	postHandler := handlers.NewPostHandler(eng, feed)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(eng)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
