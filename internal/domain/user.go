package domain

import "time"

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// User is an authentication identity. A member may own at most one donor record.
type User struct {
	ID           int32     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Actor identifies the caller of a state transition.
type Actor struct {
	UserID int32
	Role   UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
