package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Deliverer consumes queued notification tasks in the background worker.
type Deliverer struct {
	repo   Repository
	logger *slog.Logger
}

// NewDeliverer constructs a Deliverer.
func NewDeliverer(repo Repository, logger *slog.Logger) *Deliverer {
	return &Deliverer{repo: repo, logger: logger}
}

// Handle persists the notification carried by the task. A malformed payload is
// dropped without retry; storage failures are retried by the queue.
func (d *Deliverer) Handle(ctx context.Context, t *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		d.logger.Warn("drop malformed notification task", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if _, err := d.repo.Insert(ctx, msg); err != nil {
		return err
	}
	d.logger.Info("notification delivered",
		slog.Int64("user_id", msg.UserID),
		slog.String("type", string(msg.Type)))
	return nil
}
