// Package dashboard aggregates metrics for the admin and employee views.
package dashboard

// AdminStats is the company-wide dashboard payload.
type AdminStats struct {
	TotalEmployees      int64     `json:"total_employees"`
	TotalEmployeesTrend float64   `json:"total_employees_trend"`
	TotalSalaryPaid     float64   `json:"total_salary_disbursed"`
	TotalSalaryTrend    float64   `json:"total_salary_trend"`
	PendingExpenses     int64     `json:"pending_expenses"`
	PendingExpenseTrend float64   `json:"pending_expenses_trend"`
	MonthlyPayroll      []float64 `json:"monthly_payroll_summary"`
}

// EmployeeStats is the per-employee dashboard payload.
type EmployeeStats struct {
	TotalSalarySlips    int64   `json:"total_salary_slips"`
	TotalExpenses       int64   `json:"total_expenses"`
	PendingExpenses     int64   `json:"pending_expenses"`
	ApprovedExpenses    int64   `json:"approved_expenses"`
	TotalExpenseAmount  float64 `json:"total_expense_amount"`
	TotalApprovedAmount float64 `json:"total_approved_amount"`
}

// Trend is the month-over-month movement in percent. A zero baseline yields
// zero rather than a division error.
func Trend(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
