package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/handlers"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/logger"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/middleware"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/services/events"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/session"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Encounter Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage", cfg.Storage)

	var store storage.Storage
	var redisClient *redis.Client

	switch cfg.Storage {
	case "redis":
		rs := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := rs.WaitForConnection(waitCtx); err != nil {
			waitCancel()
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		waitCancel()
		store = rs
		redisClient = rs.GetClient()

	case "sqlite":
		ss, err := storage.NewSQLiteStorage(cfg.SQLitePath, cfg.DataDir, log)
		if err != nil {
			log.Error("Failed to open SQLite storage", "error", err)
			os.Exit(1)
		}
		store = ss
	}
	log.Info("Storage connection established successfully")

	// Event broadcasting needs Redis pub/sub; without it the engine
	// still runs, just silently.
	var broadcaster *events.Broadcaster
	if redisClient != nil {
		broadcaster = events.NewBroadcaster(redisClient, log)
	}

	manager := session.NewManager(store, broadcaster, cfg.Encounter, cfg.ClockRate, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(manager, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
