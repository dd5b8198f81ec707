package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/clearpointhq/client-portal-api/internal/config"
	"github.com/clearpointhq/client-portal-api/internal/constants"
	"github.com/clearpointhq/client-portal-api/internal/database"
	"github.com/clearpointhq/client-portal-api/internal/handlers"
	"github.com/clearpointhq/client-portal-api/internal/logging"
	"github.com/clearpointhq/client-portal-api/internal/middleware"
	"github.com/clearpointhq/client-portal-api/internal/repository"
	"github.com/clearpointhq/client-portal-api/internal/services"
	"github.com/clearpointhq/client-portal-api/internal/vaultcrypto"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logging.Setup()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// The vault key is managed outside the application; refuse to start
	// without a usable cipher.
	cipher, err := vaultcrypto.NewFromHex(cfg.VaultKeyHex)
	if err != nil {
		log.Fatalf("Failed to initialize vault cipher: %v", err)
	}

	// Initialize repositories
	db := database.GetDB()
	itemRepo := repository.NewActionItemRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	vaultRepo := repository.NewSecureResponseRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// Initialize services
	notificationSink := services.NewDBNotificationSink(notificationRepo)
	activitySink := services.NewDBActivitySink(activityRepo)
	transitionService := services.NewTransitionService(itemRepo, notificationSink, activitySink)
	vaultService := services.NewVaultService(itemRepo, vaultRepo, userRepo, cipher, activitySink)
	progressService := services.NewProgressService(projectRepo)
	authService := services.NewAuthService(userRepo)

	// Start the retention sweep outside the request path
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	sweeper := services.NewRetentionSweeper(vaultRepo, cfg.RetentionSweepInterval)
	go sweeper.Run(ctx)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // Lax
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewActionItemHandler(transitionService, vaultService, itemRepo, activityRepo)
	projectHandler := handlers.NewProjectHandler(progressService, projectRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Client Portal API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Action item routes (protected)
		items := api.Group("/action-items")
		items.Use(middleware.RequireAuth())
		{
			items.GET("", itemHandler.ListActionItems)
			items.GET("/:id", middleware.RequireActionItem(), itemHandler.GetActionItem)
			items.POST("/:id/status", middleware.RequireActionItem(), itemHandler.UpdateStatus)
			items.POST("/:id/secure", middleware.RequireActionItem(), itemHandler.SubmitSecureResponse)
			items.GET("/:id/secure", middleware.RequireActionItem(), middleware.RequireStaff(), itemHandler.GetSecureResponse)
			items.DELETE("/:id/secure", middleware.RequireActionItem(), middleware.RequireStaff(), itemHandler.DeleteSecureResponse)
			items.GET("/:id/activity", middleware.RequireActionItem(), middleware.RequireStaff(), itemHandler.ListActivity)
		}

		// Project read paths (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.GET("/:id/progress", projectHandler.GetProjectProgress)
		}

		// Notification inbox (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkNotificationRead)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
