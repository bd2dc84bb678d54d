// Package auth exposes the authentication HTTP endpoints.
package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/token"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	identities *identity.Service
	tokens     *token.Service
	guard      *guard.Guard
	validator  *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, identities *identity.Service, tokens *token.Service, g *guard.Guard) *Handler {
	return &Handler{
		logger:     logger,
		identities: identities,
		tokens:     tokens,
		guard:      g,
		validator:  validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. The /me route is
// mounted separately behind the authentication middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/logout", h.handleLogout)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Post("/reset-password", h.handleResetPassword)
}

// MountProtected registers routes that require a valid access token.
func (h *Handler) MountProtected(r chi.Router) {
	r.Get("/me", h.handleMe)
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (h *Handler) issuePair(w http.ResponseWriter, status int, user identity.User, rememberMe bool) {
	access, err := h.tokens.IssueAccess(user, rememberMe)
	if err != nil {
		h.logger.Error("issue access token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	refresh, err := h.tokens.IssueRefresh(user)
	if err != nil {
		h.logger.Error("issue refresh token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, status, tokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
}

type signupRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.identities.Signup(r.Context(), identity.SignupInput{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("user registered", slog.Int64("user_id", user.ID))
	h.issuePair(w, http.StatusCreated, user, false)
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.identities.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.issuePair(w, http.StatusOK, user, req.RememberMe)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.guard.AuthenticateRefresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.issuePair(w, http.StatusOK, user, false)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := guard.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, user.Public())
}

// handleLogout is a stateless acknowledgement; clients discard their tokens.
func (h *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// handleForgotPassword never reveals whether the address is registered.
func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if _, err := h.identities.FindByEmail(r.Context(), req.Email); err == nil {
		h.logger.Info("password reset requested", slog.String("email", req.Email))
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "If the email exists, a password reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	claims, err := h.tokens.Validate(req.Token)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid reset token")
		return
	}
	user, err := h.identities.FindByEmail(r.Context(), claims.Subject)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.identities.ResetPassword(r.Context(), user.ID, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("password reset", slog.Int64("user_id", user.ID))
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}
