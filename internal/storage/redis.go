package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisStorage implements the Storage interface using Redis for session
// state and the filesystem for catalog overrides.
type RedisStorage struct {
	client   *redis.Client
	logger   *slog.Logger
	catalogs catalogLoader
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:   rdb,
		logger:   logger,
		catalogs: catalogLoader{dataDir: dataDir, logger: logger},
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session operations (Redis-backed)

func (r *RedisStorage) SaveSession(ctx context.Context, id uuid.UUID, ss *state.SessionState) error {
	ss.UpdatedAt = time.Now()

	data, err := json.Marshal(ss)
	if err != nil {
		r.logger.Error("Failed to marshal session state", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	key := sessionKeyPrefix + id.String()
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save session state", "uuid", id, "error", err)
		return fmt.Errorf("failed to save session state: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.SessionState, error) {
	key := sessionKeyPrefix + id.String()
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("Session not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load session state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}

	data := cmd.Val()
	if data == "" {
		r.logger.Warn("Session not found", "uuid", id)
		return nil, nil
	}

	var ss state.SessionState
	if err := json.Unmarshal([]byte(data), &ss); err != nil {
		r.logger.Error("Failed to unmarshal session state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	ss.Normalize()

	return &ss, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	key := sessionKeyPrefix + id.String()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete session state", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw := iter.Val()[len(sessionKeyPrefix):]
		id, err := uuid.Parse(raw)
		if err != nil {
			r.logger.Warn("Skipping malformed session key", "key", iter.Val())
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return ids, nil
}

// Catalog operations (filesystem-backed)

func (r *RedisStorage) GetTierCatalog(ctx context.Context) (*reputation.TierCatalog, error) {
	return r.catalogs.loadTiers()
}

func (r *RedisStorage) GetActionCatalog(ctx context.Context) (*reputation.ActionCatalog, error) {
	return r.catalogs.loadActions()
}

func (r *RedisStorage) GetEncounterCatalog(ctx context.Context) (*encounter.Catalog, error) {
	return r.catalogs.loadEncounters()
}

// GetClient returns the underlying Redis client for pub/sub and queue use.
func (r *RedisStorage) GetClient() *redis.Client {
	return r.client
}
