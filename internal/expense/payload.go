package expense

import "time"

// ExpensePayload is the wire representation of a claim.
type ExpensePayload struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employee_id"`
	Category     Category   `json:"category"`
	Amount       float64    `json:"amount"`
	Description  string     `json:"description,omitempty"`
	ExpenseDate  time.Time  `json:"expense_date"`
	ReceiptURL   string     `json:"receipt_url,omitempty"`
	Status       Status     `json:"status"`
	AdminComment string     `json:"admin_comment,omitempty"`
	ReviewedBy   *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Payload converts a claim for serialization.
func (e Expense) Payload() ExpensePayload {
	return ExpensePayload{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		Category:     e.Category,
		Amount:       e.Amount,
		Description:  e.Description,
		ExpenseDate:  e.ExpenseDate,
		ReceiptURL:   e.ReceiptURL,
		Status:       e.Status,
		AdminComment: e.AdminComment,
		ReviewedBy:   e.ReviewedBy,
		ReviewedAt:   e.ReviewedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// Payloads converts a claim list for serialization, never returning nil.
func Payloads(claims []Expense) []ExpensePayload {
	out := make([]ExpensePayload, 0, len(claims))
	for _, e := range claims {
		out = append(out, e.Payload())
	}
	return out
}
