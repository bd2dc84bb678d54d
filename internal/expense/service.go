package expense

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/notify"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Invalidator drops cached aggregates after a claim write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service owns the expense claim workflow.
type Service struct {
	repo   Repository
	sink   notify.Sink
	logger *slog.Logger
	now    func() time.Time
	cache  Invalidator
}

func NewService(repo Repository, sink notify.Sink, logger *slog.Logger) *Service {
	return &Service{repo: repo, sink: sink, logger: logger, now: time.Now}
}

// SetCacheInvalidator installs the dashboard cache hook. Optional.
func (s *Service) SetCacheInvalidator(inv Invalidator) {
	s.cache = inv
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", slog.Any("error", err))
	}
}

func validateSubmit(input SubmitInput) error {
	if !input.Category.Valid() {
		return fmt.Errorf("unknown category %q: %w", input.Category, httpx.ErrValidation)
	}
	if input.Amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", httpx.ErrValidation)
	}
	if input.ExpenseDate.IsZero() {
		return fmt.Errorf("expense date is required: %w", httpx.ErrValidation)
	}
	return nil
}

// Submit files a new claim in pending state.
func (s *Service) Submit(ctx context.Context, employee guard.Employee, input SubmitInput) (Expense, error) {
	if err := validateSubmit(input); err != nil {
		return Expense{}, err
	}
	claim, err := s.repo.Insert(ctx, employee.ID, input)
	if err != nil {
		return Expense{}, err
	}
	s.invalidateCache(ctx)
	return claim, nil
}

// ownedPending loads a claim for its owner. A claim owned by someone else is
// reported exactly like a missing one, and only pending claims come back.
func (s *Service) ownedPending(ctx context.Context, employee guard.Employee, id int64) (Expense, error) {
	claim, err := s.repo.Get(ctx, id)
	if err != nil {
		return Expense{}, err
	}
	if claim.EmployeeID != employee.ID {
		return Expense{}, httpx.ErrNotFound
	}
	if claim.Status != StatusPending {
		return Expense{}, fmt.Errorf("claim already %s: %w", claim.Status, httpx.ErrInvalidState)
	}
	return claim, nil
}

// Update edits a pending claim. Decided claims are immutable to their owner.
func (s *Service) Update(ctx context.Context, employee guard.Employee, id int64, patch UpdateInput) (Expense, error) {
	if patch.Category != nil && !patch.Category.Valid() {
		return Expense{}, fmt.Errorf("unknown category %q: %w", *patch.Category, httpx.ErrValidation)
	}
	if patch.Amount != nil && *patch.Amount <= 0 {
		return Expense{}, fmt.Errorf("amount must be positive: %w", httpx.ErrValidation)
	}
	if _, err := s.ownedPending(ctx, employee, id); err != nil {
		return Expense{}, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Withdraw removes a pending claim.
func (s *Service) Withdraw(ctx context.Context, employee guard.Employee, id int64) error {
	if _, err := s.ownedPending(ctx, employee, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// Approve records an approval. Already-decided claims may be re-decided.
func (s *Service) Approve(ctx context.Context, admin guard.Admin, id int64, comment string) (Expense, error) {
	return s.decide(ctx, admin, id, StatusApproved, comment)
}

// Reject records a rejection. Already-decided claims may be re-decided.
func (s *Service) Reject(ctx context.Context, admin guard.Admin, id int64, comment string) (Expense, error) {
	return s.decide(ctx, admin, id, StatusRejected, comment)
}

func (s *Service) decide(ctx context.Context, admin guard.Admin, id int64, status Status, comment string) (Expense, error) {
	claim, err := s.repo.Decide(ctx, id, status, comment, admin.ID, s.now())
	if err != nil {
		return Expense{}, err
	}
	s.invalidateCache(ctx)

	kind := notify.TypeExpenseApproved
	verb := "approved"
	if status == StatusRejected {
		kind = notify.TypeExpenseRejected
		verb = "rejected"
	}
	err = s.sink.Notify(ctx, notify.Message{
		UserID:  claim.EmployeeID,
		Type:    kind,
		Title:   fmt.Sprintf("Expense %s", verb),
		Message: fmt.Sprintf("Your %s expense of %.2f was %s.", claim.Category, claim.Amount, verb),
		Link:    fmt.Sprintf("/employee/expenses/%d", claim.ID),
	})
	if err != nil {
		s.logger.Warn("expense decision notification failed",
			slog.Int64("expense_id", claim.ID),
			slog.Int64("employee_id", claim.EmployeeID),
			slog.Any("error", err))
	}
	s.logger.Info("expense decided",
		slog.Int64("expense_id", claim.ID),
		slog.String("status", string(status)),
		slog.Int64("admin_id", admin.ID))
	return claim, nil
}

func (s *Service) ListForAdmin(ctx context.Context, _ guard.Admin, filter AdminFilter, page shared.Page) ([]Expense, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", filter.Status, httpx.ErrValidation)
	}
	return s.repo.ListForAdmin(ctx, filter, page)
}

func (s *Service) ListForEmployee(ctx context.Context, employee guard.Employee, status Status, page shared.Page) ([]Expense, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, httpx.ErrValidation)
	}
	return s.repo.ListForEmployee(ctx, employee.ID, status, page)
}

// GetOwn fetches one claim scoped to its owner.
func (s *Service) GetOwn(ctx context.Context, employee guard.Employee, id int64) (Expense, error) {
	claim, err := s.repo.Get(ctx, id)
	if err != nil {
		return Expense{}, err
	}
	if claim.EmployeeID != employee.ID {
		return Expense{}, httpx.ErrNotFound
	}
	return claim, nil
}
