package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

// UserRepository interface for user profile operations
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error // Hard delete, attempts are kept

	// Query operations
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)
	ListByGrade(ctx context.Context, grade models.Grade) ([]*models.User, error)
}
