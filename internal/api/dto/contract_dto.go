package dto

import "time"

// TerminateContractRequest carries the mandatory termination reason.
type TerminateContractRequest struct {
	Reason string `json:"reason"`
}

// ContractResponse is the contract projection including the computed
// traffic-light color.
type ContractResponse struct {
	ID                string     `json:"id"`
	Number            string     `json:"number"`
	TicketID          string     `json:"ticket_id"`
	DivisionID        string     `json:"division_id"`
	DocumentType      string     `json:"document_type"`
	Description       string     `json:"description"`
	PICUserID         *string    `json:"pic_user_id,omitempty"`
	PICName           string     `json:"pic_name,omitempty"`
	PICEmail          string     `json:"pic_email,omitempty"`
	StartDate         string     `json:"start_date"`
	EndDate           string     `json:"end_date,omitempty"`
	IsAutoRenewal     bool       `json:"is_auto_renewal"`
	Status            string     `json:"status"`
	StatusColor       string     `json:"status_color"`
	DaysRemaining     int        `json:"days_remaining"`
	TerminatedAt      *time.Time `json:"terminated_at,omitempty"`
	TerminationReason *string    `json:"termination_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// JobResultResponse reports an admin-triggered batch job outcome.
type JobResultResponse struct {
	Job       string `json:"job"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped,omitempty"`
}

// SettingRequest writes one settings key.
type SettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NotificationResponse mirrors an in-app notification.
type NotificationResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DivisionResponse mirrors a division directory entry.
type DivisionResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// UserResponse mirrors a user directory entry.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
