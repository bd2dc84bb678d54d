package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/admin"
	"github.com/meridian-hr/meridian/internal/auth"
	"github.com/meridian-hr/meridian/internal/employee"
	"github.com/meridian-hr/meridian/internal/files"
	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Guard           *guard.Guard
	AuthHandler     *auth.Handler
	AdminHandler    *admin.Handler
	EmployeeHandler *employee.Handler
	FilesHandler    *files.Handler
	Pool            *pgxpool.Pool
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Middleware)
			params.AuthHandler.MountProtected(r)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(params.Guard.Middleware)
		params.AdminHandler.MountRoutes(r)
	})

	r.Route("/employee", func(r chi.Router) {
		r.Use(params.Guard.Middleware)
		params.EmployeeHandler.MountRoutes(r)
	})

	r.Route("/files", func(r chi.Router) {
		params.FilesHandler.MountDownload(r)
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Middleware)
			params.FilesHandler.MountUpload(r)
		})
	})

	return r
}
