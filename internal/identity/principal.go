package identity

import (
	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

// Principal is the resolved caller of a request. It is passed explicitly to
// every service operation; nothing reads it from ambient state.
type Principal struct {
	UserID   string          `json:"user_id"`
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Role     models.UserRole `json:"role"`
	Provider string          `json:"provider"`
	Profile  *models.User    `json:"profile"`
}

func NewPrincipal(user *models.User, provider string) *Principal {
	return &Principal{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
		Provider: provider,
		Profile:  user,
	}
}

func (p *Principal) Is(role models.UserRole) bool {
	return p != nil && p.Role == role
}

func (p *Principal) Grade() models.Grade {
	if p == nil || p.Profile == nil {
		return ""
	}
	return p.Profile.Grade
}

// ProfileComplete reports whether a student has filled in name and grade.
// Staff accounts are always complete.
func (p *Principal) ProfileComplete() bool {
	if p == nil || p.Profile == nil {
		return false
	}
	if p.Role != models.RoleStudent {
		return true
	}
	return p.Profile.ProfileComplete
}
