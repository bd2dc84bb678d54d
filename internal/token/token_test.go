package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
)

func testService() *Service {
	return NewService(Config{
		Secret:      []byte("test-secret"),
		AccessTTL:   30 * time.Minute,
		RefreshTTL:  7 * 24 * time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
	})
}

func testUser() identity.User {
	return identity.User{ID: 42, Email: "jane@example.com", Role: identity.RoleEmployee}
}

func TestIssueAndValidate(t *testing.T) {
	svc := testService()

	raw, err := svc.IssueAccess(testUser(), false)
	require.NoError(t, err)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", claims.Subject)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, KindAccess, claims.Kind)
}

func TestValidateExpired(t *testing.T) {
	svc := testService()

	raw, err := svc.Issue(testUser(), KindAccess, 0)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = svc.Validate(raw)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestValidateTampered(t *testing.T) {
	svc := testService()

	raw, err := svc.IssueAccess(testUser(), false)
	require.NoError(t, err)

	_, err = svc.Validate(raw + "x")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	other := NewService(Config{Secret: []byte("different-secret"), AccessTTL: time.Minute})
	_, err = other.Validate(raw)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestValidateMalformed(t *testing.T) {
	svc := testService()
	_, err := svc.Validate("not-a-token")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestRememberMeExtendsExpiry(t *testing.T) {
	svc := testService()

	short, err := svc.IssueAccess(testUser(), false)
	require.NoError(t, err)
	long, err := svc.IssueAccess(testUser(), true)
	require.NoError(t, err)

	shortClaims, err := svc.Validate(short)
	require.NoError(t, err)
	longClaims, err := svc.Validate(long)
	require.NoError(t, err)

	wantLong := time.Now().Add(30 * 24 * time.Hour)
	require.WithinDuration(t, wantLong, longClaims.ExpiresAt.Time, time.Minute)
	require.True(t, longClaims.ExpiresAt.After(shortClaims.ExpiresAt.Add(24*time.Hour)))
}

func TestRefreshKind(t *testing.T) {
	svc := testService()

	raw, err := svc.IssueRefresh(testUser())
	require.NoError(t, err)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, KindRefresh, claims.Kind)
}
