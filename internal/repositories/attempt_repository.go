package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

// AttemptRepository is append-only: attempts are never updated or deleted.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id string) (*models.Attempt, error)

	// Query operations, newest first
	List(ctx context.Context) ([]*models.Attempt, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Attempt, error)
	ListByQuiz(ctx context.Context, quizID string) ([]*models.Attempt, error)
	ListByGrade(ctx context.Context, grade models.Grade) ([]*models.Attempt, error)
}
