package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Repository defines notification persistence.
type Repository interface {
	Insert(ctx context.Context, msg Message) (Notification, error)
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, page shared.Page) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID int64) (Notification, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const notificationColumns = `id, user_id, type, title, message, is_read, coalesce(link, ''), created_at`

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.Link, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Notification{}, httpx.ErrNotFound
	}
	if err != nil {
		return Notification{}, fmt.Errorf("notify: scan: %w", err)
	}
	return n, nil
}

func (r *pgRepository) Insert(ctx context.Context, msg Message) (Notification, error) {
	return scanNotification(r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, title, message, is_read, link)
		VALUES ($1, $2, $3, $4, false, nullif($5, ''))
		RETURNING `+notificationColumns,
		msg.UserID, msg.Type, msg.Title, msg.Message, msg.Link))
}

func (r *pgRepository) ListForUser(ctx context.Context, userID int64, unreadOnly bool, page shared.Page) ([]Notification, error) {
	page = page.Normalize()
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4`,
		userID, unreadOnly, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("notify: list: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.Link, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("notify: scan: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notify: list: %w", err)
	}
	return notifications, nil
}

// MarkRead updates the row only when it belongs to userID; a missing or
// foreign notification surfaces as NotFound.
func (r *pgRepository) MarkRead(ctx context.Context, id, userID int64) (Notification, error) {
	return scanNotification(r.pool.QueryRow(ctx, `
		UPDATE notifications SET is_read = true
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns,
		id, userID))
}
