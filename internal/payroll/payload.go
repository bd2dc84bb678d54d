package payroll

import "time"

// SlipPayload is the wire representation of a slip.
type SlipPayload struct {
	ID          int64      `json:"id"`
	EmployeeID  int64      `json:"employee_id"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	BasicSalary float64    `json:"basic_salary"`
	Allowances  float64    `json:"allowances"`
	Deductions  float64    `json:"deductions"`
	Tax         float64    `json:"tax"`
	NetSalary   float64    `json:"net_salary"`
	Status      Status     `json:"status"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Payload converts a slip for serialization.
func (s Slip) Payload() SlipPayload {
	return SlipPayload{
		ID:          s.ID,
		EmployeeID:  s.EmployeeID,
		Month:       s.Month,
		Year:        s.Year,
		BasicSalary: s.BasicSalary,
		Allowances:  s.Allowances,
		Deductions:  s.Deductions,
		Tax:         s.Tax,
		NetSalary:   s.NetSalary,
		Status:      s.Status,
		PaymentDate: s.PaymentDate,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Payloads converts a slip list for serialization, never returning nil.
func Payloads(slips []Slip) []SlipPayload {
	out := make([]SlipPayload, 0, len(slips))
	for _, s := range slips {
		out = append(out, s.Payload())
	}
	return out
}
