package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

// QuizRepository stores quiz definitions. Quizzes are never updated in place.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	Delete(ctx context.Context, id string) error

	// Query operations, newest first
	List(ctx context.Context) ([]*models.Quiz, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*models.Quiz, error)
	ListByGrade(ctx context.Context, grade models.Grade) ([]*models.Quiz, error)
}
