package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/property-system/tenancy-api/audit"
	"github.com/property-system/tenancy-api/handlers"
	"github.com/property-system/tenancy-api/middleware"
)

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	slog.Info("Starting tenancy API server")

	dbConfig := NewDatabaseConfig()
	db, err := ConnectDB(dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := InitDatabase(db); err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	auditor := audit.NewClient(os.Getenv("AUDIT_SERVICE_URL"))

	mux := http.NewServeMux()
	handlers.NewAPIServer(db, auditor).SetupRoutes(mux)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	authMiddleware := middleware.NewJWTAuthMiddleware(middleware.JWTAuthConfig{Secret: jwtSecret}, db)

	// Middleware chain, built inside out; logging runs outermost
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = middleware.RequireJSONContent(handler)
	handler = middleware.RateLimitMiddleware(
		parseIntOrDefault("RATE_LIMIT_MAX_REQUESTS", 100),
		parseDurationOrDefault("RATE_LIMIT_WINDOW", "1m"),
	)(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig())(handler)
	handler = middleware.RequestLogging(handler)

	port := getEnvOrDefault("PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Tenancy API server listening", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if err := GracefulShutdown(db); err != nil {
		slog.Error("Database shutdown failed", "error", err)
	}

	slog.Info("Server exited")
}
