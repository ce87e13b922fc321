package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sanojDD/Balentine/internal/auth"
	"github.com/sanojDD/Balentine/internal/cache"
	"github.com/sanojDD/Balentine/internal/config"
	"github.com/sanojDD/Balentine/internal/database"
	"github.com/sanojDD/Balentine/internal/handlers"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/metrics"
	"github.com/sanojDD/Balentine/internal/middleware"
	"github.com/sanojDD/Balentine/internal/repository"
	"github.com/sanojDD/Balentine/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Balentine server starting ===",
		zap.String("environment", cfg.Environment))

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	verbose := cfg.Environment == "development"
	if err := database.Initialize(cfg.DSN(), verbose); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it the rate limiter passes everything through
	if cfg.RedisHost != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	metrics.Initialize()

	// Services
	authService := auth.NewService([]byte(cfg.JWTSecret))
	messageStore := repository.NewMessageStore(database.DB)

	hub := websocket.NewHub()
	wsRouter := websocket.NewRouter(hub, messageStore)
	wsHandler := websocket.NewHandler(hub, wsRouter, authService)

	h := handlers.New(authService, hub, wsRouter, messageStore)

	// HTTP router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "balentine-backend",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Authentication (public, rate limited)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", middleware.RedisRateLimit(10, time.Minute), h.Signup)
			authGroup.POST("/login", middleware.RedisRateLimit(10, time.Minute), h.Login)
			authGroup.GET("/me", middleware.RequireAuth(authService), h.Me)
		}

		// User routes
		users := api.Group("/users")
		{
			users.Use(middleware.RequireAuth(authService))
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
			users.PATCH("/:id", h.UpdateUser)
			users.DELETE("/:id", h.DeleteUser)
			users.POST("/:id/follow", h.FollowUser)
			users.PATCH("/:id/ban", middleware.RequireAdmin(), h.BanUser)
		}

		// Post routes
		posts := api.Group("/posts")
		{
			posts.Use(middleware.RequireAuth(authService))
			posts.POST("", h.CreatePost)
			posts.GET("", h.ListPosts)
			posts.DELETE("/:id", h.DeletePost)
			posts.POST("/:id/like", h.LikePost)
			posts.GET("/:id/comments", h.ListComments)
			posts.POST("/:id/comments", h.CreateComment)
		}

		// Comment routes
		comments := api.Group("/comments")
		{
			comments.Use(middleware.RequireAuth(authService))
			comments.DELETE("/:id", h.DeleteComment)
		}

		// Message routes
		messages := api.Group("/messages")
		{
			messages.Use(middleware.RequireAuth(authService))
			messages.GET("/:userId", h.GetMessages)
			messages.DELETE("/:id", h.DeleteMessage)
		}

		// Live connection routes
		ws := api.Group("/ws")
		{
			// Auth via query param ?token=... or Authorization header
			ws.GET("", wsHandler.HandleWebSocket)
			ws.GET("/online", middleware.RequireAuth(authService), wsHandler.HandleOnlineUsers)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Close live connections first so clients see a clean goodbye
	wsHandler.Shutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
