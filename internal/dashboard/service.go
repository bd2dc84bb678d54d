package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-hr/meridian/internal/guard"
)

// Service computes dashboard aggregates.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// previousMonth steps one calendar month back, wrapping over year boundaries.
func previousMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// AdminStats assembles the company dashboard for the month containing now.
// The independent aggregates load concurrently and the result is cached
// until the next payroll or expense write bumps the cache version.
func (s *Service) AdminStats(ctx context.Context, _ guard.Admin, now time.Time) (AdminStats, error) {
	month, year := int(now.Month()), now.Year()

	loader := func(ctx context.Context) (any, error) {
		monthStart := time.Date(year, now.Month(), 1, 0, 0, 0, 0, now.Location())
		prevMonth, prevYear := previousMonth(month, year)

		var stats AdminStats
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			current, err := s.repo.CountEmployees(ctx)
			if err != nil {
				return err
			}
			previous, err := s.repo.CountEmployeesBefore(ctx, monthStart)
			if err != nil {
				return err
			}
			stats.TotalEmployees = current
			stats.TotalEmployeesTrend = Trend(float64(current), float64(previous))
			return nil
		})
		g.Go(func() error {
			current, err := s.repo.PaidNetTotal(ctx, month, year)
			if err != nil {
				return err
			}
			previous, err := s.repo.PaidNetTotal(ctx, prevMonth, prevYear)
			if err != nil {
				return err
			}
			stats.TotalSalaryPaid = current
			stats.TotalSalaryTrend = Trend(current, previous)
			return nil
		})
		g.Go(func() error {
			current, err := s.repo.CountPendingExpenses(ctx)
			if err != nil {
				return err
			}
			previous, err := s.repo.CountPendingExpensesBefore(ctx, monthStart)
			if err != nil {
				return err
			}
			stats.PendingExpenses = current
			stats.PendingExpenseTrend = Trend(float64(current), float64(previous))
			return nil
		})
		g.Go(func() error {
			totals, err := s.repo.MonthlyPaidTotals(ctx, year)
			if err != nil {
				return err
			}
			stats.MonthlyPayroll = totals
			return nil
		})

		if err := g.Wait(); err != nil {
			return AdminStats{}, err
		}
		return stats, nil
	}

	key, err := s.cache.BuildKey(ctx, "dashboard", "admin", fmt.Sprintf("%04d-%02d", year, month))
	if err != nil {
		return AdminStats{}, err
	}
	var stats AdminStats
	if err := s.cache.FetchJSON(ctx, key, &stats, loader); err != nil {
		return AdminStats{}, err
	}
	return stats, nil
}

// EmployeeStats assembles the calling employee's personal dashboard.
func (s *Service) EmployeeStats(ctx context.Context, employee guard.Employee) (EmployeeStats, error) {
	var stats EmployeeStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slips, err := s.repo.CountSlipsForEmployee(ctx, employee.ID)
		if err != nil {
			return err
		}
		stats.TotalSalarySlips = slips
		return nil
	})
	g.Go(func() error {
		summary, err := s.repo.ExpenseSummaryForEmployee(ctx, employee.ID)
		if err != nil {
			return err
		}
		stats.TotalExpenses = summary.Total
		stats.PendingExpenses = summary.Pending
		stats.ApprovedExpenses = summary.Approved
		stats.TotalExpenseAmount = summary.TotalAmount
		stats.TotalApprovedAmount = summary.ApprovedAmount
		return nil
	})

	if err := g.Wait(); err != nil {
		return EmployeeStats{}, err
	}
	return stats, nil
}

// Invalidate drops cached dashboards after a write to payroll or expenses.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
