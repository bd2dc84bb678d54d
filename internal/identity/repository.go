package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Repository defines credential store persistence.
type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ListEmployees(ctx context.Context, filter EmployeeFilter, page shared.Page) ([]User, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, role, coalesce(department, ''), coalesce(position, ''), coalesce(avatar_url, ''), is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.Department, &u.Position, &u.AvatarURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, httpx.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("identity: scan user: %w", err)
	}
	return u, nil
}

func (r *pgRepository) Create(ctx context.Context, user User) (User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, role, department, position, is_active)
		VALUES ($1, $2, $3, $4, nullif($5, ''), nullif($6, ''), true)
		RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.FullName, user.Role, user.Department, user.Position)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, httpx.ErrConflict
		}
		return User{}, err
	}
	return created, nil
}

func (r *pgRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *pgRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *pgRepository) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			full_name  = coalesce($2, full_name),
			department = coalesce($3, department),
			position   = coalesce($4, position),
			avatar_url = coalesce($5, avatar_url),
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, patch.FullName, patch.Department, patch.Position, patch.AvatarURL)
	return scanUser(row)
}

func (r *pgRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("identity: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *pgRepository) ListEmployees(ctx context.Context, filter EmployeeFilter, page shared.Page) ([]User, error) {
	page = page.Normalize()
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1
		  AND ($2 = '' OR full_name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR department = $3)
		ORDER BY id
		OFFSET $4 LIMIT $5`,
		RoleEmployee, filter.Search, filter.Department, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("identity: list employees: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("identity: list employees: %w", err)
	}
	return users, nil
}
