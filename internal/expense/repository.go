package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Repository defines expense claim persistence.
type Repository interface {
	Insert(ctx context.Context, employeeID int64, input SubmitInput) (Expense, error)
	Get(ctx context.Context, id int64) (Expense, error)
	Update(ctx context.Context, id int64, patch UpdateInput) (Expense, error)
	Delete(ctx context.Context, id int64) error
	// Decide records the review outcome on a claim regardless of its
	// current status.
	Decide(ctx context.Context, id int64, status Status, comment string, reviewerID int64, at time.Time) (Expense, error)
	ListForAdmin(ctx context.Context, filter AdminFilter, page shared.Page) ([]Expense, error)
	ListForEmployee(ctx context.Context, employeeID int64, status Status, page shared.Page) ([]Expense, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const expenseColumns = `id, employee_id, category, amount, coalesce(description, ''), expense_date, coalesce(receipt_url, ''), status, coalesce(admin_comment, ''), reviewed_by, reviewed_at, created_at, updated_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.EmployeeID, &e.Category, &e.Amount, &e.Description, &e.ExpenseDate,
		&e.ReceiptURL, &e.Status, &e.AdminComment, &e.ReviewedBy, &e.ReviewedAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, httpx.ErrNotFound
	}
	if err != nil {
		return Expense{}, fmt.Errorf("expense: scan claim: %w", err)
	}
	return e, nil
}

func (r *pgRepository) Insert(ctx context.Context, employeeID int64, input SubmitInput) (Expense, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (employee_id, category, amount, description, expense_date, receipt_url, status)
		VALUES ($1, $2, $3, nullif($4, ''), $5, nullif($6, ''), $7)
		RETURNING `+expenseColumns,
		employeeID, input.Category, input.Amount, input.Description, input.ExpenseDate, input.ReceiptURL, StatusPending)
	return scanExpense(row)
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Expense, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	return scanExpense(row)
}

func (r *pgRepository) Update(ctx context.Context, id int64, patch UpdateInput) (Expense, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE expenses SET
			category     = coalesce($2, category),
			amount       = coalesce($3, amount),
			description  = coalesce($4, description),
			expense_date = coalesce($5, expense_date),
			receipt_url  = coalesce($6, receipt_url),
			updated_at   = now()
		WHERE id = $1
		RETURNING `+expenseColumns,
		id, patch.Category, patch.Amount, patch.Description, patch.ExpenseDate, patch.ReceiptURL)
	return scanExpense(row)
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("expense: delete claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Decide(ctx context.Context, id int64, status Status, comment string, reviewerID int64, at time.Time) (Expense, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE expenses SET
			status        = $2,
			admin_comment = nullif($3, ''),
			reviewed_by   = $4,
			reviewed_at   = $5,
			updated_at    = now()
		WHERE id = $1
		RETURNING `+expenseColumns,
		id, status, comment, reviewerID, at)
	return scanExpense(row)
}

func (r *pgRepository) ListForAdmin(ctx context.Context, filter AdminFilter, page shared.Page) ([]Expense, error) {
	page = page.Normalize()
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = 0 OR employee_id = $2)
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4`,
		string(filter.Status), filter.EmployeeID, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("expense: list claims: %w", err)
	}
	return collectExpenses(rows)
}

func (r *pgRepository) ListForEmployee(ctx context.Context, employeeID int64, status Status, page shared.Page) ([]Expense, error) {
	page = page.Normalize()
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE employee_id = $1
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4`,
		employeeID, string(status), page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("expense: list own claims: %w", err)
	}
	return collectExpenses(rows)
}

func collectExpenses(rows pgx.Rows) ([]Expense, error) {
	defer rows.Close()
	var claims []Expense
	for rows.Next() {
		claim, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expense: collect claims: %w", err)
	}
	return claims, nil
}
