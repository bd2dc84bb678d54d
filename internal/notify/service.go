package notify

import (
	"context"

	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Service exposes the per-user notification inbox.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListForEmployee returns the caller's own notifications, newest first.
func (s *Service) ListForEmployee(ctx context.Context, employee guard.Employee, unreadOnly bool, page shared.Page) ([]Notification, error) {
	return s.repo.ListForUser(ctx, employee.ID, unreadOnly, page)
}

// MarkRead flags one of the caller's notifications as read. A notification
// belonging to someone else is reported as NotFound.
func (s *Service) MarkRead(ctx context.Context, employee guard.Employee, id int64) (Notification, error) {
	return s.repo.MarkRead(ctx, id, employee.ID)
}
