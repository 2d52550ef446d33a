package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"quickchat/internal/config"
	"quickchat/internal/database"
	"quickchat/internal/presence"
	postgresrepo "quickchat/internal/repository/postgres"
	"quickchat/internal/service"
	"quickchat/internal/transport/http/handlers"
	"quickchat/internal/transport/http/middleware"
	"quickchat/internal/transport/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}

	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Presence: registry owns the live-connection table, the broadcaster
	// pushes the online set on every change.
	registry := presence.NewRegistry()
	broadcaster := ws.NewPresenceBroadcaster(registry)
	registry.SetOnChange(broadcaster.Broadcast)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)
	seenService := service.NewSeenService(messageRepo)
	deletionService := service.NewDeletionService(messageRepo)

	notifier := ws.NewRegistryNotifier(registry)
	messageService.SetNotifier(notifier)
	seenService.SetNotifier(notifier)
	deletionService.SetNotifier(notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	messageHandler := handlers.NewMessageHandler(messageService, seenService, deletionService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /ws", ws.ServeWS(registry, userRepo, cfg.JWTSecret))

	// Protected - Users
	mux.Handle("GET /api/v1/users/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PUT /api/v1/users/profile", auth(http.HandlerFunc(userHandler.UpdateProfile)))

	// Protected - Messages
	mux.Handle("GET /api/v1/messages/users", auth(http.HandlerFunc(messageHandler.Sidebar)))
	mux.Handle("GET /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.History)))
	mux.Handle("POST /api/v1/messages/send/{id}", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("PUT /api/v1/messages/mark/{id}", auth(http.HandlerFunc(messageHandler.MarkSeen)))
	mux.Handle("DELETE /api/v1/messages/delete/{id}", auth(http.HandlerFunc(messageHandler.Delete)))

	// Start server with CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: c.Handler(mux),
	}

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// On SIGINT/SIGTERM stop accepting connections and let in-flight
	// requests drain before exiting.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
