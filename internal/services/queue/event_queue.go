package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/queue"
)

const requestsKey = "requests"

// EventQueue manages the global queue of gameplay event requests.
// The API enqueues requests and the worker drains them.
type EventQueue struct {
	client *Client
}

func NewEventQueue(client *Client) *EventQueue {
	return &EventQueue{
		client: client,
	}
}

// EnqueueRequest adds a request to the global requests queue
func (q *EventQueue) EnqueueRequest(ctx context.Context, req *queue.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	err = q.client.rdb.RPush(ctx, requestsKey, data).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	return nil
}

// DequeueRequest removes and returns the next request from the global queue.
// Returns nil if the queue is empty.
func (q *EventQueue) DequeueRequest(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, requestsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	return req, nil
}

// BlockingDequeueRequest blocks until a request is available, then returns it.
// A zero timeout waits forever.
func (q *EventQueue) BlockingDequeueRequest(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, 0, requestsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	return req, nil
}

// RequestQueueDepth returns the number of requests in the global queue
func (q *EventQueue) RequestQueueDepth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, requestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}
