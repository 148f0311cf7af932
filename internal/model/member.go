package model

import "time"

// MemberRole is the authorization role carried in access tokens.
type MemberRole string

const (
	RoleUser   MemberRole = "USER"
	RoleSeller MemberRole = "SELLER"
	RoleAdmin  MemberRole = "ADMIN"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch MemberRole(s) {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// MemberStatus is the lifecycle state of an account. Members are never
// deleted; they only change status.
type MemberStatus string

const (
	MemberActive    MemberStatus = "ACTIVE"
	MemberInactive  MemberStatus = "INACTIVE"
	MemberDormant   MemberStatus = "DORMANT"
	MemberWithdrawn MemberStatus = "WITHDRAWN"
)

// Member mirrors the 'members' table.
type Member struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Role         MemberRole
	Status       MemberStatus
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the member may authenticate or act. Only ACTIVE
// members pass; INACTIVE, DORMANT and WITHDRAWN are all rejected.
func (m *Member) IsActive() bool { return m.Status == MemberActive }
