package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
	pkgqueue "github.com/Unity-Lab-AI/Trader-sub008/pkg/queue"
)

func setupTestQueue(t *testing.T) *EventQueue {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client := NewClientFromRedis(rdb, logger)
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewEventQueue(client)
}

func TestEventQueue_EnqueueDequeue(t *testing.T) {
	q := setupTestQueue(t)
	ctx := context.Background()

	sessionID := uuid.New()
	env, err := game.Wrap(game.QuestCompleted{Multiplier: 1.5})
	require.NoError(t, err)

	req := pkgqueue.NewGameEventRequest(sessionID, env)
	require.NoError(t, q.EnqueueRequest(ctx, req))

	depth, err := q.RequestQueueDepth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	got, err := q.DequeueRequest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, req.RequestID, got.RequestID)
	assert.Equal(t, pkgqueue.RequestTypeGameEvent, got.Type)
	assert.Equal(t, sessionID, got.SessionID)
	require.NotNil(t, got.Event)

	ev, err := got.Event.Unwrap()
	require.NoError(t, err)
	qc, ok := ev.(game.QuestCompleted)
	require.True(t, ok)
	assert.Equal(t, 1.5, qc.Multiplier)
}

func TestEventQueue_DequeueEmpty(t *testing.T) {
	q := setupTestQueue(t)

	got, err := q.DequeueRequest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEventQueue_FIFOOrder(t *testing.T) {
	q := setupTestQueue(t)
	ctx := context.Background()

	sessionID := uuid.New()
	var ids []string
	for i := 0; i < 3; i++ {
		env, err := game.Wrap(game.TravelCompleted{From: "riverstead", To: "thornmoor"})
		require.NoError(t, err)
		req := pkgqueue.NewGameEventRequest(sessionID, env)
		ids = append(ids, req.RequestID)
		require.NoError(t, q.EnqueueRequest(ctx, req))
	}

	for _, want := range ids {
		got, err := q.DequeueRequest(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, got.RequestID)
	}
}
