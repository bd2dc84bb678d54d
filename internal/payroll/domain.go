// Package payroll owns the salary slip ledger.
package payroll

import "time"

// Status is the salary slip lifecycle state. The stored column is free-form
// text for compatibility, but the code only ever writes these values.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusCancelled
}

// Slip is one employee's salary statement for a month.
type Slip struct {
	ID          int64
	EmployeeID  int64
	Month       int
	Year        int
	BasicSalary float64
	Allowances  float64
	Deductions  float64
	Tax         float64
	NetSalary   float64
	Status      Status
	PaymentDate *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateInput carries the fields for a new slip.
type CreateInput struct {
	EmployeeID  int64
	Month       int
	Year        int
	BasicSalary float64
	Allowances  float64
	Deductions  float64
	Tax         float64
	PaymentDate *time.Time
	Notes       string
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Month       *int
	Year        *int
	BasicSalary *float64
	Allowances  *float64
	Deductions  *float64
	Tax         *float64
	PaymentDate *time.Time
	Status      *Status
	Notes       *string
}

// AdminFilter narrows admin slip listings. Zero values mean no filter.
type AdminFilter struct {
	EmployeeID int64
	Month      int
	Year       int
}

// ComputeNet is the net salary formula. Negative results pass through as-is.
func ComputeNet(basic, allowances, deductions, tax float64) float64 {
	return basic + allowances - deductions - tax
}
