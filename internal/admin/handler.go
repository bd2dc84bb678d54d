// Package admin exposes the administrator HTTP endpoints.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hr/meridian/internal/dashboard"
	"github.com/meridian-hr/meridian/internal/document"
	"github.com/meridian-hr/meridian/internal/expense"
	"github.com/meridian-hr/meridian/internal/guard"
	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/payroll"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Handler wires the admin API surface.
type Handler struct {
	logger     *slog.Logger
	identities *identity.Service
	slips      *payroll.Service
	expenses   *expense.Service
	dashboards *dashboard.Service
	renderer   document.Renderer
	validator  *validator.Validate
}

func NewHandler(logger *slog.Logger, identities *identity.Service, slips *payroll.Service,
	expenses *expense.Service, dashboards *dashboard.Service, renderer document.Renderer) *Handler {
	return &Handler{
		logger:     logger,
		identities: identities,
		slips:      slips,
		expenses:   expenses,
		dashboards: dashboards,
		renderer:   renderer,
		validator:  validator.New(),
	}
}

// MountRoutes registers admin routes; the router mounts them behind the
// authentication middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.handleDashboardStats)
	r.Get("/employees", h.handleListEmployees)
	r.Get("/employees/{employeeID}", h.handleGetEmployee)
	r.Post("/salary-slip", h.handleCreateSlip)
	r.Put("/salary-slip/{slipID}", h.handleUpdateSlip)
	r.Delete("/salary-slip/{slipID}", h.handleDeleteSlip)
	r.Get("/salary-slips", h.handleListSlips)
	r.Post("/salary-slips/bulk", h.handleBulkCreateSlips)
	r.Get("/salary-slips/{slipID}/pdf", h.handleSlipPDF)
	r.Get("/expenses", h.handleListExpenses)
	r.Put("/expenses/{expenseID}/approve", h.handleApproveExpense)
	r.Put("/expenses/{expenseID}/reject", h.handleRejectExpense)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrNotFound
	}
	return id, nil
}

func (h *Handler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	stats, err := h.dashboards.AdminStats(r.Context(), admin, time.Now())
	if err != nil {
		h.logger.Error("load admin dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	if _, err := guard.AdminFromRequest(r); err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter := identity.EmployeeFilter{
		Search:     r.URL.Query().Get("search"),
		Department: r.URL.Query().Get("department"),
	}
	employees, err := h.identities.ListEmployees(r.Context(), filter, shared.PageFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]identity.PublicUser, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.Public())
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := guard.AdminFromRequest(r); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "employeeID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	employee, err := h.identities.GetEmployee(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee.Public())
}

type slipRequest struct {
	EmployeeID  int64      `json:"employee_id" validate:"required,gt=0"`
	Month       int        `json:"month" validate:"required,min=1,max=12"`
	Year        int        `json:"year" validate:"required,min=2000,max=2100"`
	BasicSalary float64    `json:"basic_salary" validate:"gte=0"`
	Allowances  float64    `json:"allowances" validate:"gte=0"`
	Deductions  float64    `json:"deductions" validate:"gte=0"`
	Tax         float64    `json:"tax" validate:"gte=0"`
	PaymentDate *time.Time `json:"payment_date"`
	Notes       string     `json:"notes"`
}

func (req slipRequest) toInput() payroll.CreateInput {
	return payroll.CreateInput{
		EmployeeID:  req.EmployeeID,
		Month:       req.Month,
		Year:        req.Year,
		BasicSalary: req.BasicSalary,
		Allowances:  req.Allowances,
		Deductions:  req.Deductions,
		Tax:         req.Tax,
		PaymentDate: req.PaymentDate,
		Notes:       req.Notes,
	}
}

func (h *Handler) handleCreateSlip(w http.ResponseWriter, r *http.Request) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req slipRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	slip, err := h.slips.Create(r.Context(), admin, req.toInput())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, slip.Payload())
}

func (h *Handler) handleBulkCreateSlips(w http.ResponseWriter, r *http.Request) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var reqs []slipRequest
	if err := httpx.DecodeJSON(r, &reqs); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	inputs := make([]payroll.CreateInput, 0, len(reqs))
	for _, req := range reqs {
		if err := h.validator.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		inputs = append(inputs, req.toInput())
	}
	slips, err := h.slips.BulkCreate(r.Context(), admin, inputs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payroll.Payloads(slips))
}

type slipPatchRequest struct {
	Month       *int            `json:"month" validate:"omitempty,min=1,max=12"`
	Year        *int            `json:"year" validate:"omitempty,min=2000,max=2100"`
	BasicSalary *float64        `json:"basic_salary" validate:"omitempty,gte=0"`
	Allowances  *float64        `json:"allowances" validate:"omitempty,gte=0"`
	Deductions  *float64        `json:"deductions" validate:"omitempty,gte=0"`
	Tax         *float64        `json:"tax" validate:"omitempty,gte=0"`
	PaymentDate *time.Time      `json:"payment_date"`
	Status      *payroll.Status `json:"status"`
	Notes       *string         `json:"notes"`
}

func (h *Handler) handleUpdateSlip(w http.ResponseWriter, r *http.Request) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "slipID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req slipPatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	slip, err := h.slips.Update(r.Context(), admin, id, payroll.UpdateInput{
		Month:       req.Month,
		Year:        req.Year,
		BasicSalary: req.BasicSalary,
		Allowances:  req.Allowances,
		Deductions:  req.Deductions,
		Tax:         req.Tax,
		PaymentDate: req.PaymentDate,
		Status:      req.Status,
		Notes:       req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, slip.Payload())
}

func (h *Handler) handleDeleteSlip(w http.ResponseWriter, r *http.Request) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "slipID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.slips.Delete(r.Context(), admin, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleListSlips(w http.ResponseWriter, r *http.Request) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	employeeID, _ := strconv.ParseInt(q.Get("employee_id"), 10, 64)
	month, _ := strconv.Atoi(q.Get("month"))
	year, _ := strconv.Atoi(q.Get("year"))
	slips, err := h.slips.ListForAdmin(r.Context(), admin,
		payroll.AdminFilter{EmployeeID: employeeID, Month: month, Year: year},
		shared.PageFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payroll.Payloads(slips))
}

func (h *Handler) handleSlipPDF(w http.ResponseWriter, r *http.Request) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "slipID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	slip, err := h.slips.Get(r.Context(), admin, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	employee, err := h.identities.GetEmployee(r.Context(), slip.EmployeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.SalarySlipPDF(r.Context(), slip, employee)
	if err != nil {
		h.logger.Error("render slip pdf", slog.Int64("slip_id", slip.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		"attachment; filename="+document.AdminSlipFilename(slip.Month, slip.Year, slip.EmployeeID))
	_, _ = w.Write(pdf)
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	employeeID, _ := strconv.ParseInt(q.Get("employee_id"), 10, 64)
	claims, err := h.expenses.ListForAdmin(r.Context(), admin,
		expense.AdminFilter{Status: expense.Status(q.Get("status")), EmployeeID: employeeID},
		shared.PageFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense.Payloads(claims))
}

type decisionRequest struct {
	AdminComment string `json:"admin_comment"`
}

func (h *Handler) handleApproveExpense(w http.ResponseWriter, r *http.Request) {
	h.decideExpense(w, r, (*expense.Service).Approve)
}

func (h *Handler) handleRejectExpense(w http.ResponseWriter, r *http.Request) {
	h.decideExpense(w, r, (*expense.Service).Reject)
}

func (h *Handler) decideExpense(w http.ResponseWriter, r *http.Request,
	decide func(*expense.Service, context.Context, guard.Admin, int64, string) (expense.Expense, error)) {
	admin, err := guard.AdminFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := pathID(r, "expenseID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req decisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	claim, err := decide(h.expenses, r.Context(), admin, id, req.AdminComment)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, claim.Payload())
}
