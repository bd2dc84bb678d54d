// Package guard resolves bearer tokens to identities and enforces roles.
//
// Protected service methods take an Admin or Employee value as a parameter.
// Those types can only be obtained through RequireAdmin / RequireEmployee, so
// business logic cannot be reached without passing the guard.
package guard

import (
	"context"

	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/token"
)

// Admin is proof that the holder authenticated as an administrator.
type Admin struct {
	identity.User
}

// Employee is proof that the holder authenticated as an employee.
type Employee struct {
	identity.User
}

// IdentityResolver looks up accounts for validated token subjects.
type IdentityResolver interface {
	FindByEmail(ctx context.Context, email string) (identity.User, error)
}

// Guard authenticates tokens and gates operations by role. It is side-effect
// free; every downstream component receives an already-checked identity.
type Guard struct {
	tokens     *token.Service
	identities IdentityResolver
}

// New constructs a Guard.
func New(tokens *token.Service, identities IdentityResolver) *Guard {
	return &Guard{tokens: tokens, identities: identities}
}

// Authenticate resolves a raw access token to an active identity. An invalid
// token and a token whose subject no longer exists are indistinguishable.
func (g *Guard) Authenticate(ctx context.Context, raw string) (identity.User, error) {
	claims, err := g.tokens.Validate(raw)
	if err != nil {
		return identity.User{}, httpx.ErrUnauthorized
	}
	if claims.Kind != token.KindAccess {
		return identity.User{}, httpx.ErrUnauthorized
	}
	user, err := g.identities.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return identity.User{}, httpx.ErrUnauthorized
	}
	if !user.IsActive {
		return identity.User{}, httpx.ErrForbidden
	}
	return user, nil
}

// AuthenticateRefresh resolves a refresh token to an active identity for the
// renewal operation. Access-kind tokens are rejected even when otherwise valid.
func (g *Guard) AuthenticateRefresh(ctx context.Context, raw string) (identity.User, error) {
	claims, err := g.tokens.Validate(raw)
	if err != nil {
		return identity.User{}, httpx.ErrUnauthorized
	}
	if claims.Kind != token.KindRefresh {
		return identity.User{}, httpx.ErrUnauthorized
	}
	user, err := g.identities.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return identity.User{}, httpx.ErrUnauthorized
	}
	if !user.IsActive {
		return identity.User{}, httpx.ErrForbidden
	}
	return user, nil
}

// RequireAdmin proves the identity holds the admin role.
func RequireAdmin(user identity.User) (Admin, error) {
	if user.Role != identity.RoleAdmin {
		return Admin{}, httpx.ErrForbidden
	}
	return Admin{User: user}, nil
}

// RequireEmployee proves the identity holds the employee role.
func RequireEmployee(user identity.User) (Employee, error) {
	if user.Role != identity.RoleEmployee {
		return Employee{}, httpx.ErrForbidden
	}
	return Employee{User: user}, nil
}
