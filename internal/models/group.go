package models

import "time"

// Group is a named collection of members holding each other accountable.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "5AM Club", "Leg Day Crew").
	Name string

	// CreatedAt is when the group was created.
	CreatedAt time.Time
}

// MemberRole distinguishes group admins from regular members. Settlement
// ignores the role: admins are scored like everyone else.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// GroupMember links a user to a group.
type GroupMember struct {
	GroupID string
	UserID  string
	Role    MemberRole
}

// User is the minimal identity the settlement job needs: enough to score a
// member and name them in diagnostics. Account management lives in the
// external identity provider.
type User struct {
	ID    string
	Name  string
	Email string
}

// Member is one scored participant inside an ActiveContract roster.
type Member struct {
	UserID string
	Name   string
}

// ActiveContract is the roster tuple the settlement job iterates: one Active
// contract joined with its group and every member's identity.
type ActiveContract struct {
	ContractID string
	GroupID    string
	GroupName  string
	Members    []Member
}
