package services

import (
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

func principalID(p *identity.Principal) string {
	if p == nil {
		return ""
	}
	return p.UserID
}

// requireRole fails with a PermissionError unless p holds one of roles.
func requireRole(p *identity.Principal, resource, action string, roles ...models.UserRole) error {
	for _, role := range roles {
		if p.Is(role) {
			return nil
		}
	}
	return NewPermissionError(principalID(p), "", resource, action, "role not allowed")
}

// requireQuizOwner allows the teacher who created quiz and any admin.
func requireQuizOwner(p *identity.Principal, quiz *models.Quiz, action string) error {
	if p.Is(models.RoleAdmin) || (p.Is(models.RoleTeacher) && quiz.TeacherID == p.UserID) {
		return nil
	}
	return NewPermissionError(principalID(p), quiz.ID, "quiz", action, "not the quiz owner")
}
