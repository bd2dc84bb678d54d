package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/token"
)

type stubResolver struct {
	users map[string]identity.User
}

func (s *stubResolver) FindByEmail(ctx context.Context, email string) (identity.User, error) {
	user, ok := s.users[email]
	if !ok {
		return identity.User{}, httpx.ErrNotFound
	}
	return user, nil
}

func newTestGuard(users ...identity.User) (*Guard, *token.Service) {
	resolver := &stubResolver{users: make(map[string]identity.User)}
	for _, u := range users {
		resolver.users[u.Email] = u
	}
	tokens := token.NewService(token.Config{
		Secret:      []byte("guard-test"),
		AccessTTL:   time.Minute,
		RefreshTTL:  time.Hour,
		RememberTTL: time.Hour,
	})
	return New(tokens, resolver), tokens
}

func TestAuthenticate(t *testing.T) {
	admin := identity.User{ID: 1, Email: "boss@example.com", Role: identity.RoleAdmin, IsActive: true}
	g, tokens := newTestGuard(admin)

	raw, err := tokens.IssueAccess(admin, false)
	require.NoError(t, err)

	got, err := g.Authenticate(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, admin.ID, got.ID)
}

func TestAuthenticateUnknownSubjectMatchesInvalidToken(t *testing.T) {
	ghost := identity.User{ID: 9, Email: "gone@example.com", Role: identity.RoleEmployee, IsActive: true}
	g, tokens := newTestGuard() // resolver knows nobody

	raw, err := tokens.IssueAccess(ghost, false)
	require.NoError(t, err)

	_, unknownErr := g.Authenticate(context.Background(), raw)
	_, invalidErr := g.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, unknownErr, httpx.ErrUnauthorized)
	require.Equal(t, invalidErr, unknownErr)
}

func TestAuthenticateInactive(t *testing.T) {
	user := identity.User{ID: 2, Email: "off@example.com", Role: identity.RoleEmployee, IsActive: false}
	g, tokens := newTestGuard(user)

	raw, err := tokens.IssueAccess(user, false)
	require.NoError(t, err)

	_, err = g.Authenticate(context.Background(), raw)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestAuthenticateRejectsRefreshKind(t *testing.T) {
	user := identity.User{ID: 3, Email: "emp@example.com", Role: identity.RoleEmployee, IsActive: true}
	g, tokens := newTestGuard(user)

	refresh, err := tokens.IssueRefresh(user)
	require.NoError(t, err)

	_, err = g.Authenticate(context.Background(), refresh)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestAuthenticateRefresh(t *testing.T) {
	user := identity.User{ID: 4, Email: "ren@example.com", Role: identity.RoleEmployee, IsActive: true}
	g, tokens := newTestGuard(user)

	refresh, err := tokens.IssueRefresh(user)
	require.NoError(t, err)
	access, err := tokens.IssueAccess(user, false)
	require.NoError(t, err)

	got, err := g.AuthenticateRefresh(context.Background(), refresh)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	// an access token must not drive renewal, even while valid
	_, err = g.AuthenticateRefresh(context.Background(), access)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestRequireRole(t *testing.T) {
	admin := identity.User{ID: 1, Role: identity.RoleAdmin}
	employee := identity.User{ID: 2, Role: identity.RoleEmployee}

	_, err := RequireAdmin(employee)
	require.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = RequireEmployee(admin)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	got, err := RequireAdmin(admin)
	require.NoError(t, err)
	require.Equal(t, admin.ID, got.ID)
}
