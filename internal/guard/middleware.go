package guard

import (
	"context"
	"net/http"
	"strings"

	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated identity in context.
func ContextWithUser(ctx context.Context, user identity.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated identity from context.
func UserFromContext(ctx context.Context) (identity.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(identity.User)
	return user, ok
}

// BearerToken extracts the bearer credential from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Middleware authenticates every request and stores the identity in context.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := BearerToken(r)
		if raw == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		user, err := g.Authenticate(r.Context(), raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// AdminFromRequest proves the request identity is an administrator.
func AdminFromRequest(r *http.Request) (Admin, error) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return Admin{}, httpx.ErrUnauthorized
	}
	return RequireAdmin(user)
}

// EmployeeFromRequest proves the request identity is an employee.
func EmployeeFromRequest(r *http.Request) (Employee, error) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return Employee{}, httpx.ErrUnauthorized
	}
	return RequireEmployee(user)
}
