// Package expense runs the expense claim workflow.
package expense

import "time"

// Category is the closed set of expense categories.
type Category string

const (
	CategoryTravel    Category = "travel"
	CategoryFood      Category = "food"
	CategoryEquipment Category = "equipment"
	CategoryTraining  Category = "training"
	CategoryOther     Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTravel, CategoryFood, CategoryEquipment, CategoryTraining, CategoryOther:
		return true
	}
	return false
}

// Status is the claim decision state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Expense is one employee claim.
type Expense struct {
	ID           int64
	EmployeeID   int64
	Category     Category
	Amount       float64
	Description  string
	ExpenseDate  time.Time
	ReceiptURL   string
	Status       Status
	AdminComment string
	ReviewedBy   *int64
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SubmitInput carries a new claim.
type SubmitInput struct {
	Category    Category
	Amount      float64
	Description string
	ExpenseDate time.Time
	ReceiptURL  string
}

// UpdateInput is a partial edit of a still-pending claim.
type UpdateInput struct {
	Category    *Category
	Amount      *float64
	Description *string
	ExpenseDate *time.Time
	ReceiptURL  *string
}

// AdminFilter narrows admin claim listings. Zero values mean no filter.
type AdminFilter struct {
	Status     Status
	EmployeeID int64
}
