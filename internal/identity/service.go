package identity

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Service wraps credential store business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SignupInput carries the fields required to register an account.
type SignupInput struct {
	Email      string
	Password   string
	FullName   string
	Department string
	Position   string
}

// Signup registers a new employee account. A duplicate email fails with Conflict.
func (s *Service) Signup(ctx context.Context, input SignupInput) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("identity: hash password: %w", err)
	}
	return s.repo.Create(ctx, User{
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         RoleEmployee,
		Department:   input.Department,
		Position:     input.Position,
	})
}

// Authenticate validates email/password credentials. Unknown email and wrong
// password are indistinguishable; a deactivated account fails with Forbidden.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return User{}, httpx.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, httpx.ErrUnauthorized
	}
	if !user.IsActive {
		return User{}, httpx.ErrForbidden
	}
	return user, nil
}

// FindByEmail looks up an account by exact email.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// FindByID looks up an account by id.
func (s *Service) FindByID(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (User, error) {
	return s.repo.UpdateProfile(ctx, id, patch)
}

// SetAvatar records the stored avatar reference for the account.
func (s *Service) SetAvatar(ctx context.Context, id int64, avatarURL string) (User, error) {
	return s.repo.UpdateProfile(ctx, id, ProfilePatch{AvatarURL: &avatarURL})
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, user User, currentPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("identity: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, user.ID, string(hash))
}

// ResetPassword stores a new hash without checking the old one. Callers must
// have proven control of the account through a reset token first.
func (s *Service) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("identity: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// ListEmployees returns employee accounts matching the filter.
func (s *Service) ListEmployees(ctx context.Context, filter EmployeeFilter, page shared.Page) ([]User, error) {
	return s.repo.ListEmployees(ctx, filter, page)
}

// GetEmployee returns an employee account; admin accounts are not visible here.
func (s *Service) GetEmployee(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if user.Role != RoleEmployee {
		return User{}, httpx.ErrNotFound
	}
	return user, nil
}
