package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/notify"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// EmployeeDirectory resolves employee identities for slip targeting.
type EmployeeDirectory interface {
	FindByID(ctx context.Context, id int64) (identity.User, error)
}

// Invalidator drops cached aggregates after a ledger write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service owns the salary slip lifecycle.
type Service struct {
	repo      Repository
	directory EmployeeDirectory
	sink      notify.Sink
	logger    *slog.Logger
	cache     Invalidator
}

func NewService(repo Repository, directory EmployeeDirectory, sink notify.Sink, logger *slog.Logger) *Service {
	return &Service{repo: repo, directory: directory, sink: sink, logger: logger}
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

func validateCreate(input CreateInput) error {
	if input.Month < 1 || input.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12: %w", httpx.ErrValidation)
	}
	if input.Year < 2000 || input.Year > 2100 {
		return fmt.Errorf("year out of range: %w", httpx.ErrValidation)
	}
	if input.BasicSalary < 0 || input.Allowances < 0 || input.Deductions < 0 || input.Tax < 0 {
		return fmt.Errorf("salary components must be non-negative: %w", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) resolveEmployee(ctx context.Context, id int64) (identity.User, error) {
	user, err := s.directory.FindByID(ctx, id)
	if err != nil {
		return identity.User{}, err
	}
	if user.Role != identity.RoleEmployee {
		return identity.User{}, httpx.ErrNotFound
	}
	return user, nil
}

// Create issues a slip for one employee. Net salary is derived from the
// components at creation time and the slip starts out pending.
func (s *Service) Create(ctx context.Context, admin guard.Admin, input CreateInput) (Slip, error) {
	if err := validateCreate(input); err != nil {
		return Slip{}, err
	}
	employee, err := s.resolveEmployee(ctx, input.EmployeeID)
	if err != nil {
		return Slip{}, err
	}

	net := ComputeNet(input.BasicSalary, input.Allowances, input.Deductions, input.Tax)
	slip, err := s.repo.Create(ctx, input, net)
	if err != nil {
		return Slip{}, err
	}

	s.announce(ctx, employee.ID, slip)
	s.invalidateCache(ctx)
	s.logger.Info("salary slip created",
		slog.Int64("slip_id", slip.ID),
		slog.Int64("employee_id", employee.ID),
		slog.Int64("admin_id", admin.ID))
	return slip, nil
}

// BulkCreate issues slips for many employees in one transaction. Entries
// referencing unknown or non-employee users are skipped; the remainder is
// committed together, so the result may hold fewer slips than requested.
func (s *Service) BulkCreate(ctx context.Context, admin guard.Admin, inputs []CreateInput) ([]Slip, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no slips to create: %w", httpx.ErrValidation)
	}
	for _, input := range inputs {
		if err := validateCreate(input); err != nil {
			return nil, err
		}
	}

	accepted := make([]CreateInput, 0, len(inputs))
	for _, input := range inputs {
		if _, err := s.resolveEmployee(ctx, input.EmployeeID); err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				continue
			}
			return nil, err
		}
		accepted = append(accepted, input)
	}

	slips, err := s.repo.CreateBatch(ctx, accepted)
	if err != nil {
		return nil, err
	}

	for _, slip := range slips {
		s.announce(ctx, slip.EmployeeID, slip)
	}
	s.invalidateCache(ctx)
	s.logger.Info("salary slips bulk created",
		slog.Int("requested", len(inputs)),
		slog.Int("created", len(slips)),
		slog.Int64("admin_id", admin.ID))
	return slips, nil
}

// Update patches a slip and recomputes net salary from the resulting
// components; fields absent from the patch keep their stored values.
func (s *Service) Update(ctx context.Context, _ guard.Admin, id int64, patch UpdateInput) (Slip, error) {
	if patch.Month != nil && (*patch.Month < 1 || *patch.Month > 12) {
		return Slip{}, fmt.Errorf("month must be between 1 and 12: %w", httpx.ErrValidation)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return Slip{}, fmt.Errorf("unknown status %q: %w", *patch.Status, httpx.ErrValidation)
	}
	slip, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return Slip{}, err
	}
	s.invalidateCache(ctx)
	return slip, nil
}

func (s *Service) Delete(ctx context.Context, _ guard.Admin, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *Service) Get(ctx context.Context, _ guard.Admin, id int64) (Slip, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForAdmin(ctx context.Context, _ guard.Admin, filter AdminFilter, page shared.Page) ([]Slip, error) {
	return s.repo.ListForAdmin(ctx, filter, page)
}

// ListOwn returns the calling employee's slips only.
func (s *Service) ListOwn(ctx context.Context, employee guard.Employee, page shared.Page) ([]Slip, error) {
	return s.repo.ListForEmployee(ctx, employee.ID, page)
}

// GetOwn fetches a single slip scoped to the calling employee. Slips owned
// by someone else are indistinguishable from missing ones.
func (s *Service) GetOwn(ctx context.Context, employee guard.Employee, id int64) (Slip, error) {
	slip, err := s.repo.Get(ctx, id)
	if err != nil {
		return Slip{}, err
	}
	if slip.EmployeeID != employee.ID {
		return Slip{}, httpx.ErrNotFound
	}
	return slip, nil
}

func (s *Service) announce(ctx context.Context, employeeID int64, slip Slip) {
	err := s.sink.Notify(ctx, notify.Message{
		UserID:  employeeID,
		Type:    notify.TypeSalarySlip,
		Title:   "Salary Slip Available",
		Message: fmt.Sprintf("Your salary slip for %d/%d is ready.", slip.Month, slip.Year),
		Link:    fmt.Sprintf("/employee/salary-slips/%d", slip.ID),
	})
	if err != nil {
		s.logger.Warn("salary slip notification failed",
			slog.Int64("slip_id", slip.ID),
			slog.Int64("employee_id", employeeID),
			slog.Any("error", err))
	}
}
