// Package employee exposes the employee self-service HTTP endpoints.
package employee

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hr/meridian/internal/dashboard"
	"github.com/meridian-hr/meridian/internal/document"
	"github.com/meridian-hr/meridian/internal/expense"
	"github.com/meridian-hr/meridian/internal/files"
	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/notify"
	"github.com/meridian-hr/meridian/internal/payroll"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Handler wires the employee API surface.
type Handler struct {
	logger        *slog.Logger
	identities    *identity.Service
	slips         *payroll.Service
	expenses      *expense.Service
	dashboards    *dashboard.Service
	notifications *notify.Service
	store         *files.Store
	renderer      document.Renderer
	validator     *validator.Validate
	maxUpload     int64
}

func NewHandler(logger *slog.Logger, identities *identity.Service, slips *payroll.Service,
	expenses *expense.Service, dashboards *dashboard.Service, notifications *notify.Service,
	store *files.Store, renderer document.Renderer, maxUpload int64) *Handler {
	return &Handler{
		logger:        logger,
		identities:    identities,
		slips:         slips,
		expenses:      expenses,
		dashboards:    dashboards,
		notifications: notifications,
		store:         store,
		renderer:      renderer,
		validator:     validator.New(),
		maxUpload:     maxUpload,
	}
}

// MountRoutes registers employee routes; the router mounts them behind the
// authentication middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.handleStats)
	r.Get("/profile", h.handleGetProfile)
	r.Put("/profile", h.handleUpdateProfile)
	r.Post("/profile/avatar", h.handleUploadAvatar)
	r.Get("/salary-slips", h.handleListSlips)
	r.Get("/salary-slips/{slipID}", h.handleGetSlip)
	r.Get("/salary-slips/{slipID}/pdf", h.handleSlipPDF)
	r.Post("/expenses", h.handleSubmitExpense)
	r.Get("/expenses", h.handleListExpenses)
	r.Get("/expenses/{expenseID}", h.handleGetExpense)
	r.Put("/expenses/{expenseID}", h.handleUpdateExpense)
	r.Delete("/expenses/{expenseID}", h.handleWithdrawExpense)
	r.Get("/notifications", h.handleListNotifications)
	r.Put("/notifications/{notificationID}/read", h.handleMarkNotificationRead)
	r.Post("/change-password", h.handleChangePassword)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrNotFound
	}
	return id, nil
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	stats, err := h.dashboards.EmployeeStats(r.Context(), employee)
	if err != nil {
		h.logger.Error("load employee dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee.Public())
}

type profileRequest struct {
	FullName   *string `json:"full_name"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	AvatarURL  *string `json:"avatar_url"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req profileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	updated, err := h.identities.UpdateProfile(r.Context(), employee.ID, identity.ProfilePatch{
		FullName:   req.FullName,
		Department: req.Department,
		Position:   req.Position,
		AvatarURL:  req.AvatarURL,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated.Public())
}

func (h *Handler) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "file field is required")
		return
	}
	defer file.Close()

	name, err := h.store.Save(file, header.Filename)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	avatarURL := "/files/" + name
	updated, err := h.identities.SetAvatar(r.Context(), employee.ID, avatarURL)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("avatar uploaded", slog.Int64("user_id", employee.ID), slog.String("file", name))
	httpx.JSON(w, http.StatusOK, updated.Public())
}

func (h *Handler) handleListSlips(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	slips, err := h.slips.ListOwn(r.Context(), employee, shared.PageFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payroll.Payloads(slips))
}

func (h *Handler) handleGetSlip(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "slipID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	slip, err := h.slips.GetOwn(r.Context(), employee, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, slip.Payload())
}

func (h *Handler) handleSlipPDF(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "slipID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	slip, err := h.slips.GetOwn(r.Context(), employee, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.SalarySlipPDF(r.Context(), slip, employee.User)
	if err != nil {
		h.logger.Error("render slip pdf", slog.Int64("slip_id", slip.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		"attachment; filename="+document.EmployeeSlipFilename(slip.Month, slip.Year))
	_, _ = w.Write(pdf)
}

type expenseRequest struct {
	Category    expense.Category `json:"category" validate:"required"`
	Amount      float64          `json:"amount" validate:"required,gt=0"`
	Description string           `json:"description"`
	ExpenseDate time.Time        `json:"expense_date" validate:"required"`
	ReceiptURL  string           `json:"receipt_url"`
}

func (h *Handler) handleSubmitExpense(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req expenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	claim, err := h.expenses.Submit(r.Context(), employee, expense.SubmitInput{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		ExpenseDate: req.ExpenseDate,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, claim.Payload())
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	claims, err := h.expenses.ListForEmployee(r.Context(), employee,
		expense.Status(r.URL.Query().Get("status")), shared.PageFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense.Payloads(claims))
}

func (h *Handler) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "expenseID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	claim, err := h.expenses.GetOwn(r.Context(), employee, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, claim.Payload())
}

type expensePatchRequest struct {
	Category    *expense.Category `json:"category"`
	Amount      *float64          `json:"amount" validate:"omitempty,gt=0"`
	Description *string           `json:"description"`
	ExpenseDate *time.Time        `json:"expense_date"`
	ReceiptURL  *string           `json:"receipt_url"`
}

func (h *Handler) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "expenseID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req expensePatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	claim, err := h.expenses.Update(r.Context(), employee, id, expense.UpdateInput{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		ExpenseDate: req.ExpenseDate,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, claim.Payload())
}

func (h *Handler) handleWithdrawExpense(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "expenseID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.expenses.Withdraw(r.Context(), employee, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"
	notifications, err := h.notifications.ListForEmployee(r.Context(), employee, unreadOnly, shared.PageFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, notifications)
}

func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "notificationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	notification, err := h.notifications.MarkRead(r.Context(), employee, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, notification)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	employee, err := guard.EmployeeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.identities.ChangePassword(r.Context(), employee.User, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
