package domain

import "time"

// Trip groups participants whose shared expenses are reconciled together.
type Trip struct {
	ID          string
	Name        string
	Description string
	Currency    string
	CreatedBy   string
	CreatedAt   time.Time
}

// Role is a participant's permission level inside a trip.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Participant links a user to a trip.
type Participant struct {
	TripID   string
	User     User
	Role     Role
	JoinedAt time.Time
}

// IsAdmin reports whether the participant can manage the trip.
func (p *Participant) IsAdmin() bool {
	return p.Role == RoleAdmin
}
