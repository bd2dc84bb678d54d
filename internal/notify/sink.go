package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue name for notification delivery jobs.
	QueueDefault = "default"
	// TaskDeliver is the task type for delivering a notification.
	TaskDeliver = "notify:deliver"
)

// Sink accepts notifications fire-and-forget. Callers must treat a sink
// failure as non-fatal; delivery carries no guarantee.
type Sink interface {
	Notify(ctx context.Context, msg Message) error
}

// NewDeliverTask builds the Asynq task carrying one notification.
func NewDeliverTask(msg Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("notify: marshal task: %w", err)
	}
	return asynq.NewTask(TaskDeliver, data), nil
}

// QueueSink enqueues notifications for the background worker.
type QueueSink struct {
	client *asynq.Client
}

var _ Sink = (*QueueSink)(nil)

// NewQueueSink constructs a sink backed by the Asynq queue.
func NewQueueSink(redisOpts asynq.RedisClientOpt) *QueueSink {
	return &QueueSink{client: asynq.NewClient(redisOpts)}
}

// Notify enqueues the message for delivery.
func (s *QueueSink) Notify(ctx context.Context, msg Message) error {
	task, err := NewDeliverTask(msg)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		return fmt.Errorf("notify: enqueue: %w", err)
	}
	return nil
}

// Close releases the queue client.
func (s *QueueSink) Close() error {
	return s.client.Close()
}

// StoreSink writes notifications straight to the repository, bypassing the
// queue. Used when no worker is deployed.
type StoreSink struct {
	repo Repository
}

var _ Sink = (*StoreSink)(nil)

// NewStoreSink constructs a direct-write sink.
func NewStoreSink(repo Repository) *StoreSink {
	return &StoreSink{repo: repo}
}

// Notify persists the message immediately.
func (s *StoreSink) Notify(ctx context.Context, msg Message) error {
	_, err := s.repo.Insert(ctx, msg)
	return err
}
