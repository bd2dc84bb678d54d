package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

type memRepo struct {
	users  map[int64]User
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[int64]User{}, nextID: 1}
}

func (m *memRepo) Create(_ context.Context, user User) (User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return User{}, httpx.ErrConflict
		}
	}
	user.ID = m.nextID
	user.IsActive = true
	m.users[user.ID] = user
	m.nextID++
	return user, nil
}

func (m *memRepo) FindByEmail(_ context.Context, email string) (User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, httpx.ErrNotFound
}

func (m *memRepo) FindByID(_ context.Context, id int64) (User, error) {
	user, ok := m.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return user, nil
}

func (m *memRepo) UpdateProfile(_ context.Context, id int64, patch ProfilePatch) (User, error) {
	user, ok := m.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Department != nil {
		user.Department = *patch.Department
	}
	if patch.Position != nil {
		user.Position = *patch.Position
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = *patch.AvatarURL
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

func (m *memRepo) ListEmployees(_ context.Context, filter EmployeeFilter, page shared.Page) ([]User, error) {
	page = page.Normalize()
	var out []User
	for _, user := range m.users {
		if user.Role != RoleEmployee {
			continue
		}
		if filter.Department != "" && user.Department != filter.Department {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(user.FullName), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(user.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func signup(t *testing.T, svc *Service, email string) User {
	t.Helper()
	user, err := svc.Signup(context.Background(), SignupInput{
		Email:    email,
		Password: "correct horse",
		FullName: "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestSignupRegistersEmployee(t *testing.T) {
	svc := NewService(newMemRepo())

	user := signup(t, svc, "new@meridian.dev")
	require.Equal(t, RoleEmployee, user.Role)
	require.NotEqual(t, "correct horse", user.PasswordHash)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	svc := NewService(newMemRepo())
	signup(t, svc, "dup@meridian.dev")

	_, err := svc.Signup(context.Background(), SignupInput{
		Email: "dup@meridian.dev", Password: "another pass", FullName: "Dup",
	})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newMemRepo())
	signup(t, svc, "kay@meridian.dev")

	user, err := svc.Authenticate(context.Background(), "kay@meridian.dev", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "kay@meridian.dev", user.Email)
}

func TestAuthenticateWrongPasswordMatchesUnknownEmail(t *testing.T) {
	svc := NewService(newMemRepo())
	signup(t, svc, "kay@meridian.dev")

	_, errWrongPassword := svc.Authenticate(context.Background(), "kay@meridian.dev", "nope")
	_, errUnknownEmail := svc.Authenticate(context.Background(), "ghost@meridian.dev", "nope")
	require.ErrorIs(t, errWrongPassword, httpx.ErrUnauthorized)
	require.Equal(t, errUnknownEmail, errWrongPassword)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	user := signup(t, svc, "gone@meridian.dev")

	stored := repo.users[user.ID]
	stored.IsActive = false
	repo.users[user.ID] = stored

	_, err := svc.Authenticate(context.Background(), "gone@meridian.dev", "correct horse")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	user := signup(t, svc, "kay@meridian.dev")
	user = repo.users[user.ID]

	err := svc.ChangePassword(context.Background(), user, "wrong", "replacement pass")
	require.ErrorIs(t, err, httpx.ErrValidation)

	require.NoError(t, svc.ChangePassword(context.Background(), user, "correct horse", "replacement pass"))
	updated := repo.users[user.ID]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("replacement pass")))
}

func TestResetPasswordSkipsCurrentCheck(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	user := signup(t, svc, "kay@meridian.dev")

	require.NoError(t, svc.ResetPassword(context.Background(), user.ID, "fresh pass"))
	updated := repo.users[user.ID]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("fresh pass")))
}

func TestGetEmployeeHidesAdmins(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	admin, err := repo.Create(context.Background(), User{Email: "root@meridian.dev", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = svc.GetEmployee(context.Background(), admin.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListEmployeesFilters(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	for _, u := range []User{
		{Email: "a@meridian.dev", FullName: "Ada Park", Role: RoleEmployee, Department: "Engineering"},
		{Email: "b@meridian.dev", FullName: "Ben Cho", Role: RoleEmployee, Department: "Finance"},
		{Email: "root@meridian.dev", FullName: "Root", Role: RoleAdmin},
	} {
		_, err := repo.Create(context.Background(), u)
		require.NoError(t, err)
	}

	all, err := svc.ListEmployees(context.Background(), EmployeeFilter{}, shared.Page{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	engineering, err := svc.ListEmployees(context.Background(), EmployeeFilter{Department: "Engineering"}, shared.Page{})
	require.NoError(t, err)
	require.Len(t, engineering, 1)
	require.Equal(t, "Ada Park", engineering[0].FullName)

	byName, err := svc.ListEmployees(context.Background(), EmployeeFilter{Search: "ben"}, shared.Page{})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "b@meridian.dev", byName[0].Email)
}
