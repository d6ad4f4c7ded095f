package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/queue"
)

// enqueue pushes a game event onto the worker queue from the command line.
// Example:
//
//	enqueue -session <uuid> -type travel_completed -payload '{"from":"riverstead","to":"goldspire"}'
func main() {
	var (
		redisAddr = flag.String("redis", getEnv("REDIS_URL", "localhost:6379"), "redis address")
		sessionID = flag.String("session", "", "session id (required)")
		eventType = flag.String("type", "", "event type (required)")
		payload   = flag.String("payload", "{}", "event payload JSON")
	)
	flag.Parse()

	if *sessionID == "" || *eventType == "" {
		flag.Usage()
		os.Exit(2)
	}

	id, err := uuid.Parse(*sessionID)
	if err != nil {
		log.Fatal("Invalid session id: ", err)
	}

	env := game.Envelope{
		EventType: game.EventType(*eventType),
		Payload:   json.RawMessage(*payload),
	}
	// Reject unknown types and malformed payloads before they reach the queue.
	if _, err := env.Unwrap(); err != nil {
		log.Fatal("Invalid event: ", err)
	}

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}

	req := queue.NewGameEventRequest(id, env)
	data, err := json.Marshal(req)
	if err != nil {
		log.Fatal("Failed to marshal request: ", err)
	}

	if err := client.RPush(ctx, "requests", data).Err(); err != nil {
		log.Fatal("Failed to enqueue request: ", err)
	}

	fmt.Printf("Enqueued %s request: %s\n", *eventType, req.RequestID)

	depth, err := client.LLen(ctx, "requests").Result()
	if err != nil {
		log.Fatal("Failed to get queue depth: ", err)
	}
	fmt.Printf("Queue depth: %d requests\n", depth)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
