package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/services/queue"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/session"
	queuePkg "github.com/Unity-Lab-AI/Trader-sub008/pkg/queue"
)

const (
	workerTimeout = 5 * time.Second
	sweepInterval = 5 * time.Minute
)

// Worker drains the event queue, applying each request to its session
// through the session manager, and periodically expires stale encounters.
type Worker struct {
	id          string
	queue       *queue.EventQueue
	manager     *session.Manager
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(eventQueue *queue.EventQueue, manager *session.Manager, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       eventQueue,
		manager:     manager,
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins processing requests from the queue and runs the staleness
// sweep in the background. It blocks until Stop is called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	go w.runSweep()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// runSweep expires stale encounters across all sessions on a fixed timer.
func (w *Worker) runSweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if err := w.manager.SweepAll(w.ctx); err != nil {
				w.log.Error("Staleness sweep failed", "error", err, "worker_id", w.id)
			}
		}
	}
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	// Block waiting for next request (timeout after 5 seconds to check for shutdown)
	ctx, cancel := context.WithTimeout(w.ctx, workerTimeout)
	defer cancel()

	req, err := w.queue.BlockingDequeueRequest(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Timeout or shutdown, not an error
			return nil
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}

	if req == nil {
		return nil
	}

	w.log.Info("Received request from queue",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"type", req.Type,
		"session_id", req.SessionID.String(),
	)

	// Try to acquire session lock
	locked, err := w.acquireSessionLock(req.SessionID)
	if err != nil {
		return fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !locked {
		// Another worker is processing this session.
		// Re-queue at the end and try next request.
		w.log.Info("Session already locked, re-queueing request",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"session_id", req.SessionID.String(),
		)
		if err := w.queue.EnqueueRequest(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}

	defer w.releaseSessionLock(req.SessionID)
	return w.processRequest(req)
}

// acquireSessionLock attempts to acquire a lock for a session
// Returns true if lock was acquired, false if already locked
func (w *Worker) acquireSessionLock(sessionID uuid.UUID) (bool, error) {
	lockKey := fmt.Sprintf("session-lock:%s", sessionID.String())

	result, err := w.redisClient.SetNX(w.ctx, lockKey, w.id, 30*time.Second).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

// releaseSessionLock releases the lock for a session
func (w *Worker) releaseSessionLock(sessionID uuid.UUID) {
	lockKey := fmt.Sprintf("session-lock:%s", sessionID.String())

	// Only delete if we own the lock
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	if err := script.Run(w.ctx, w.redisClient, []string{lockKey}, w.id).Err(); err != nil {
		w.log.Error("Failed to release session lock", "error", err, "session_id", sessionID.String())
	}
}

// processRequest applies a single request to its session
func (w *Worker) processRequest(req *queuePkg.Request) error {
	start := time.Now()

	switch req.Type {
	case queuePkg.RequestTypeGameEvent:
		if req.Event == nil {
			return fmt.Errorf("game event request %s has no event payload", req.RequestID)
		}

		out, _, err := w.manager.ApplyEvent(w.ctx, req.SessionID, *req.Event)
		if err != nil {
			return fmt.Errorf("failed to apply event: %w", err)
		}

		w.log.Info("Event processed",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"event_type", req.Event.EventType,
			"action", out.Action,
			"new_total", out.NewTotal,
			"encounter_fired", out.Encounter != nil,
			"duration_ms", time.Since(start).Milliseconds(),
		)

	case queuePkg.RequestTypeSweep:
		expired, err := w.manager.ExpireStale(w.ctx, req.SessionID)
		if err != nil {
			return fmt.Errorf("failed to expire stale encounters: %w", err)
		}
		w.log.Info("Sweep processed",
			"worker_id", w.id,
			"session_id", req.SessionID.String(),
			"expired", len(expired),
		)

	default:
		return fmt.Errorf("unknown request type: %s", req.Type)
	}

	return nil
}
