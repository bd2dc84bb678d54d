// Package notify persists and delivers user notifications.
package notify

import "time"

// Type tags the notification kind.
type Type string

const (
	TypeSalarySlip      Type = "salary_slip"
	TypeExpenseApproved Type = "expense_approved"
	TypeExpenseRejected Type = "expense_rejected"
	TypeAnnouncement    Type = "announcement"
	TypeGeneral         Type = "general"
)

// Notification is a stored, per-user message.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is the payload handed to a Sink.
type Message struct {
	UserID  int64  `json:"user_id"`
	Type    Type   `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}
