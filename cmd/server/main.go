package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatapp-backend/internal/config"
	"chatapp-backend/internal/database"
	"chatapp-backend/internal/handler"
	"chatapp-backend/internal/middleware"
	"chatapp-backend/internal/repository"
	"chatapp-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	chatRepo := repository.NewPrivateChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Services — the hub is constructed once here and injected everywhere
	// that delivers, so every path shares one group registry
	hub := service.NewHub()
	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret)
	chatSvc := service.NewChatService(userRepo, messageRepo, hub)

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))

	// Health
	healthH := handler.NewHealthHandler(db, hub)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)
	auth.Post("/refresh", middleware.RateLimit(20, time.Minute), authH.Refresh)

	// JWT-protected routes
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))
	protected.Post("/auth/logout", authH.Logout)

	userH := handler.NewUserHandler(userRepo)
	protected.Get("/users", userH.List)

	chatH := handler.NewChatHandler(chatSvc, chatRepo)
	protected.Get("/private-chats", chatH.ListPrivateChats)
	protected.Post("/private-chats", chatH.CreatePrivateChat)
	protected.Get("/conversations/:user_id", chatH.ListConversation)
	protected.Post("/conversations/:user_id", chatH.PostConversationMessage)

	// WebSocket endpoints: anonymous admission, so no Auth middleware —
	// identity comes from the token query param inside the upgrade
	wsH := handler.NewWSHandler(hub, chatSvc, authSvc)
	app.Get("/ws/chat/:room", wsH.UpgradeRoom)
	app.Get("/ws/conversations/:user_id", wsH.UpgradeConversation)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("Chat gateway running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	hub.CloseAll()
	log.Println("Server stopped")
}
