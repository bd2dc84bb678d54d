package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpenseSummary is the per-employee expense aggregate.
type ExpenseSummary struct {
	Total          int64
	Pending        int64
	Approved       int64
	TotalAmount    float64
	ApprovedAmount float64
}

// Repository runs the aggregate queries behind the dashboards.
type Repository interface {
	CountEmployees(ctx context.Context) (int64, error)
	CountEmployeesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PaidNetTotal(ctx context.Context, month, year int) (float64, error)
	CountPendingExpenses(ctx context.Context) (int64, error)
	CountPendingExpensesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// MonthlyPaidTotals returns paid net totals for all twelve months of the
	// year, indexed month-1. Months without paid slips are zero.
	MonthlyPaidTotals(ctx context.Context, year int) ([]float64, error)
	CountSlipsForEmployee(ctx context.Context, employeeID int64) (int64, error)
	ExpenseSummaryForEmployee(ctx context.Context, employeeID int64) (ExpenseSummary, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) CountEmployees(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = 'employee'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dashboard: count employees: %w", err)
	}
	return n, nil
}

func (r *pgRepository) CountEmployeesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE role = 'employee' AND created_at < $1`, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dashboard: count employees before: %w", err)
	}
	return n, nil
}

func (r *pgRepository) PaidNetTotal(ctx context.Context, month, year int) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `
		SELECT coalesce(sum(net_salary), 0)
		FROM salary_slips
		WHERE month = $1 AND year = $2 AND status = 'paid'`, month, year).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("dashboard: paid net total: %w", err)
	}
	return total, nil
}

func (r *pgRepository) CountPendingExpenses(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM expenses WHERE status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dashboard: count pending expenses: %w", err)
	}
	return n, nil
}

func (r *pgRepository) CountPendingExpensesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM expenses WHERE status = 'pending' AND created_at < $1`, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dashboard: count pending expenses before: %w", err)
	}
	return n, nil
}

func (r *pgRepository) MonthlyPaidTotals(ctx context.Context, year int) ([]float64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT month, coalesce(sum(net_salary), 0)
		FROM salary_slips
		WHERE year = $1 AND status = 'paid'
		GROUP BY month`, year)
	if err != nil {
		return nil, fmt.Errorf("dashboard: monthly paid totals: %w", err)
	}
	defer rows.Close()

	totals := make([]float64, 12)
	for rows.Next() {
		var month int
		var total float64
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("dashboard: scan monthly total: %w", err)
		}
		if month >= 1 && month <= 12 {
			totals[month-1] = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: monthly paid totals: %w", err)
	}
	return totals, nil
}

func (r *pgRepository) CountSlipsForEmployee(ctx context.Context, employeeID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM salary_slips WHERE employee_id = $1`, employeeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dashboard: count slips: %w", err)
	}
	return n, nil
}

func (r *pgRepository) ExpenseSummaryForEmployee(ctx context.Context, employeeID int64) (ExpenseSummary, error) {
	var s ExpenseSummary
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'pending'),
		       count(*) FILTER (WHERE status = 'approved'),
		       coalesce(sum(amount), 0),
		       coalesce(sum(amount) FILTER (WHERE status = 'approved'), 0)
		FROM expenses
		WHERE employee_id = $1`, employeeID).
		Scan(&s.Total, &s.Pending, &s.Approved, &s.TotalAmount, &s.ApprovedAmount)
	if err != nil {
		return ExpenseSummary{}, fmt.Errorf("dashboard: expense summary: %w", err)
	}
	return s, nil
}
