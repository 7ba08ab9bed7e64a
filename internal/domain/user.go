package domain

import "time"

// UserRole enumerates directory roles relevant to reminder fan-out.
type UserRole string

const (
	RoleEmployee   UserRole = "EMPLOYEE"
	RoleLegal      UserRole = "LEGAL"
	RoleManagement UserRole = "MANAGEMENT"
)

// User is a directory entry: ticket creators, reviewers, and reminder recipients.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      UserRole
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
