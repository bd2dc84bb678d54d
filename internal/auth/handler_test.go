package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
	"github.com/meridian-hr/meridian/internal/token"
)

type memRepo struct {
	users  map[int64]identity.User
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[int64]identity.User{}, nextID: 1}
}

func (m *memRepo) Create(_ context.Context, user identity.User) (identity.User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return identity.User{}, httpx.ErrConflict
		}
	}
	user.ID = m.nextID
	user.IsActive = true
	m.users[user.ID] = user
	m.nextID++
	return user, nil
}

func (m *memRepo) FindByEmail(_ context.Context, email string) (identity.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return identity.User{}, httpx.ErrNotFound
}

func (m *memRepo) FindByID(_ context.Context, id int64) (identity.User, error) {
	user, ok := m.users[id]
	if !ok {
		return identity.User{}, httpx.ErrNotFound
	}
	return user, nil
}

func (m *memRepo) UpdateProfile(_ context.Context, id int64, patch identity.ProfilePatch) (identity.User, error) {
	user, ok := m.users[id]
	if !ok {
		return identity.User{}, httpx.ErrNotFound
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	m.users[id] = user
	return user, nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := m.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	user.PasswordHash = passwordHash
	m.users[id] = user
	return nil
}

func (m *memRepo) ListEmployees(_ context.Context, _ identity.EmployeeFilter, _ shared.Page) ([]identity.User, error) {
	return nil, nil
}

type fixture struct {
	repo   *memRepo
	tokens *token.Service
	router chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemRepo()
	identities := identity.NewService(repo)
	tokens := token.NewService(token.Config{
		Secret:      []byte("test-secret"),
		AccessTTL:   15 * time.Minute,
		RefreshTTL:  7 * 24 * time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
	})
	g := guard.New(tokens, identities)
	h := NewHandler(slog.New(slog.DiscardHandler), identities, tokens, g)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		h.MountRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(g.Middleware)
			h.MountProtected(r)
		})
	})
	return &fixture{repo: repo, tokens: tokens, router: r}
}

func (f *fixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodePair(t *testing.T, rec *httptest.ResponseRecorder) tokenPair {
	t.Helper()
	var pair tokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.Equal(t, "bearer", pair.TokenType)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func seedUser(t *testing.T, repo *memRepo, email, password string) identity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), identity.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Jane Seed",
		Role:         identity.RoleEmployee,
	})
	require.NoError(t, err)
	return user
}

func TestSignupIssuesTokenPair(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/auth/signup", map[string]any{
		"email":     "new@meridian.dev",
		"password":  "longenough",
		"full_name": "New Hire",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	pair := decodePair(t, rec)

	claims, err := f.tokens.Validate(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "new@meridian.dev", claims.Subject)
	require.Equal(t, token.KindAccess, claims.Kind)
}

func TestSignupRejectsShortPassword(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/auth/signup", map[string]any{
		"email":     "new@meridian.dev",
		"password":  "short",
		"full_name": "New Hire",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	seedUser(t, f.repo, "jane@meridian.dev", "longenough")

	rec := f.post(t, "/auth/login", map[string]any{
		"email":    "jane@meridian.dev",
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRememberMeExtendsAccessLifetime(t *testing.T) {
	f := newFixture(t)
	seedUser(t, f.repo, "jane@meridian.dev", "longenough")

	short := decodePair(t, f.post(t, "/auth/login", map[string]any{
		"email": "jane@meridian.dev", "password": "longenough",
	}))
	long := decodePair(t, f.post(t, "/auth/login", map[string]any{
		"email": "jane@meridian.dev", "password": "longenough", "remember_me": true,
	}))

	shortClaims, err := f.tokens.Validate(short.AccessToken)
	require.NoError(t, err)
	longClaims, err := f.tokens.Validate(long.AccessToken)
	require.NoError(t, err)
	require.True(t, longClaims.ExpiresAt.After(shortClaims.ExpiresAt.Add(24*time.Hour)))
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newFixture(t)
	seedUser(t, f.repo, "jane@meridian.dev", "longenough")

	pair := decodePair(t, f.post(t, "/auth/login", map[string]any{
		"email": "jane@meridian.dev", "password": "longenough",
	}))

	rec := f.post(t, "/auth/refresh", map[string]any{"refresh_token": pair.AccessToken})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.post(t, "/auth/refresh", map[string]any{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	decodePair(t, rec)
}

func TestMeRequiresBearerToken(t *testing.T) {
	f := newFixture(t)
	user := seedUser(t, f.repo, "jane@meridian.dev", "longenough")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	pair := decodePair(t, f.post(t, "/auth/login", map[string]any{
		"email": "jane@meridian.dev", "password": "longenough",
	}))
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body identity.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, user.Email, body.Email)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestForgotPasswordNeverLeaksExistence(t *testing.T) {
	f := newFixture(t)
	seedUser(t, f.repo, "jane@meridian.dev", "longenough")

	known := f.post(t, "/auth/forgot-password", map[string]any{"email": "jane@meridian.dev"})
	unknown := f.post(t, "/auth/forgot-password", map[string]any{"email": "ghost@meridian.dev"})
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	require.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestResetPasswordWithInvalidToken(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/auth/reset-password", map[string]any{
		"token":        "garbage",
		"new_password": "replacement",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
