package domain

import "time"

// Division represents an organizational unit tickets and contracts belong to.
// Its code feeds the business-number format.
type Division struct {
	ID        string
	Code      string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
