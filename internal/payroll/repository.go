package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Repository defines salary slip persistence.
type Repository interface {
	Create(ctx context.Context, input CreateInput, net float64) (Slip, error)
	// CreateBatch commits all entries in a single transaction; a storage
	// failure mid-batch leaves nothing behind.
	CreateBatch(ctx context.Context, inputs []CreateInput) ([]Slip, error)
	Get(ctx context.Context, id int64) (Slip, error)
	// Update applies the patch and recomputes net salary in one atomic
	// statement, using stored values for absent components.
	Update(ctx context.Context, id int64, patch UpdateInput) (Slip, error)
	Delete(ctx context.Context, id int64) error
	ListForAdmin(ctx context.Context, filter AdminFilter, page shared.Page) ([]Slip, error)
	ListForEmployee(ctx context.Context, employeeID int64, page shared.Page) ([]Slip, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const slipColumns = `id, employee_id, month, year, basic_salary, allowances, deductions, tax, net_salary, status, payment_date, coalesce(notes, ''), created_at, updated_at`

func scanSlip(row pgx.Row) (Slip, error) {
	var s Slip
	err := row.Scan(&s.ID, &s.EmployeeID, &s.Month, &s.Year, &s.BasicSalary, &s.Allowances,
		&s.Deductions, &s.Tax, &s.NetSalary, &s.Status, &s.PaymentDate, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Slip{}, httpx.ErrNotFound
	}
	if err != nil {
		return Slip{}, fmt.Errorf("payroll: scan slip: %w", err)
	}
	return s, nil
}

const insertSlip = `
	INSERT INTO salary_slips (employee_id, month, year, basic_salary, allowances, deductions, tax, net_salary, status, payment_date, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, nullif($11, ''))
	RETURNING ` + slipColumns

func (r *pgRepository) Create(ctx context.Context, input CreateInput, net float64) (Slip, error) {
	row := r.pool.QueryRow(ctx, insertSlip,
		input.EmployeeID, input.Month, input.Year, input.BasicSalary, input.Allowances,
		input.Deductions, input.Tax, net, StatusPending, input.PaymentDate, input.Notes)
	return scanSlip(row)
}

func (r *pgRepository) CreateBatch(ctx context.Context, inputs []CreateInput) ([]Slip, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("payroll: begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	slips := make([]Slip, 0, len(inputs))
	for _, input := range inputs {
		net := ComputeNet(input.BasicSalary, input.Allowances, input.Deductions, input.Tax)
		row := tx.QueryRow(ctx, insertSlip,
			input.EmployeeID, input.Month, input.Year, input.BasicSalary, input.Allowances,
			input.Deductions, input.Tax, net, StatusPending, input.PaymentDate, input.Notes)
		slip, err := scanSlip(row)
		if err != nil {
			return nil, err
		}
		slips = append(slips, slip)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("payroll: commit batch: %w", err)
	}
	return slips, nil
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Slip, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+slipColumns+` FROM salary_slips WHERE id = $1`, id)
	return scanSlip(row)
}

func (r *pgRepository) Update(ctx context.Context, id int64, patch UpdateInput) (Slip, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE salary_slips SET
			month        = coalesce($2, month),
			year         = coalesce($3, year),
			basic_salary = coalesce($4, basic_salary),
			allowances   = coalesce($5, allowances),
			deductions   = coalesce($6, deductions),
			tax          = coalesce($7, tax),
			net_salary   = coalesce($4, basic_salary) + coalesce($5, allowances) - coalesce($6, deductions) - coalesce($7, tax),
			payment_date = coalesce($8, payment_date),
			status       = coalesce($9, status),
			notes        = coalesce($10, notes),
			updated_at   = now()
		WHERE id = $1
		RETURNING `+slipColumns,
		id, patch.Month, patch.Year, patch.BasicSalary, patch.Allowances,
		patch.Deductions, patch.Tax, patch.PaymentDate, patch.Status, patch.Notes)
	return scanSlip(row)
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM salary_slips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("payroll: delete slip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) ListForAdmin(ctx context.Context, filter AdminFilter, page shared.Page) ([]Slip, error) {
	page = page.Normalize()
	rows, err := r.pool.Query(ctx, `
		SELECT `+slipColumns+`
		FROM salary_slips
		WHERE ($1 = 0 OR employee_id = $1)
		  AND ($2 = 0 OR month = $2)
		  AND ($3 = 0 OR year = $3)
		ORDER BY year DESC, month DESC
		OFFSET $4 LIMIT $5`,
		filter.EmployeeID, filter.Month, filter.Year, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("payroll: list slips: %w", err)
	}
	return collectSlips(rows)
}

func (r *pgRepository) ListForEmployee(ctx context.Context, employeeID int64, page shared.Page) ([]Slip, error) {
	page = page.Normalize()
	rows, err := r.pool.Query(ctx, `
		SELECT `+slipColumns+`
		FROM salary_slips
		WHERE employee_id = $1
		ORDER BY year DESC, month DESC
		OFFSET $2 LIMIT $3`,
		employeeID, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("payroll: list own slips: %w", err)
	}
	return collectSlips(rows)
}

func collectSlips(rows pgx.Rows) ([]Slip, error) {
	defer rows.Close()
	var slips []Slip
	for rows.Next() {
		slip, err := scanSlip(rows)
		if err != nil {
			return nil, err
		}
		slips = append(slips, slip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payroll: collect slips: %w", err)
	}
	return slips, nil
}
