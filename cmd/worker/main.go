package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/config"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/logger"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/services/queue"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/session"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/storage"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Encounter Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"storage", cfg.Storage)

	// The queue and session locks always live in Redis, whichever
	// backend holds session state.
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()
	log.Info("Redis connection established successfully")

	eventQueue := queue.NewEventQueue(queue.NewClientFromRedis(redisClient, log))
	log.Info("Queue service initialized successfully")

	var store storage.Storage
	switch cfg.Storage {
	case "redis":
		rs := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer storageCancel()
		if err := rs.Ping(storageCtx); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		store = rs

	case "sqlite":
		ss, err := storage.NewSQLiteStorage(cfg.SQLitePath, cfg.DataDir, log)
		if err != nil {
			log.Error("Failed to open SQLite storage", "error", err)
			os.Exit(1)
		}
		store = ss
	}
	log.Info("Storage service initialized successfully")

	manager := session.NewManager(store, nil, cfg.Encounter, cfg.ClockRate, log)

	w := worker.New(eventQueue, manager, redisClient, log, os.Getenv("WORKER_ID"))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for requests...")

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give worker time to finish current request
	time.Sleep(2 * time.Second)

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Worker exited")
}
