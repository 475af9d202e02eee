package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

var UserRoles = []UserRole{RoleAdmin, RoleTeacher, RoleStudent}

func (r UserRole) Valid() bool {
	for _, role := range UserRoles {
		if role == r {
			return true
		}
	}
	return false
}

// User is keyed by the identity provider's subject. Deleting a user never touches
// the attempts that reference it.
type User struct {
	ID              string   `json:"id" gorm:"primaryKey;size:255"`
	Email           string   `json:"email" gorm:"index;size:255" validate:"omitempty,email"`
	Name            string   `json:"name" gorm:"size:100"`
	Role            UserRole `json:"role" gorm:"index;not null;size:20" validate:"required,user_role"`
	Grade           Grade    `json:"grade,omitempty" gorm:"index;size:2" validate:"omitempty,grade"`
	ProfileComplete bool     `json:"profile_complete" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
