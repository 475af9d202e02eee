package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:      db,
		helpers: helpers,
	}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	if attempt.Selections() == nil {
		attempt.Answers = datatypes.NewJSONType(models.Selections{})
	}
	if err := a.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id string) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	a.normalize(&attempt)
	if err := a.helpers.checkRecord("attempt", attempt.ID, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context) ([]*models.Attempt, error) {
	return a.find(ctx, "", nil)
}

func (a *AttemptPostgreSQL) ListByStudent(ctx context.Context, studentID string) ([]*models.Attempt, error) {
	return a.find(ctx, "student_id = ?", studentID)
}

func (a *AttemptPostgreSQL) ListByQuiz(ctx context.Context, quizID string) ([]*models.Attempt, error) {
	return a.find(ctx, "quiz_id = ?", quizID)
}

func (a *AttemptPostgreSQL) ListByGrade(ctx context.Context, grade models.Grade) ([]*models.Attempt, error) {
	return a.find(ctx, "student_grade = ?", grade)
}

func (a *AttemptPostgreSQL) find(ctx context.Context, query string, arg interface{}) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	db := a.db.WithContext(ctx).Order("submitted_at DESC")
	if query != "" {
		db = db.Where(query, arg)
	}
	if err := db.Find(&attempts).Error; err != nil {
		return nil, err
	}
	for _, attempt := range attempts {
		a.normalize(attempt)
	}
	return keepValid(a.helpers, "attempt", attempts, func(attempt *models.Attempt) string { return attempt.ID }), nil
}

// normalize coerces a missing answers map to an empty one.
func (a *AttemptPostgreSQL) normalize(attempt *models.Attempt) {
	if attempt.Selections() == nil {
		attempt.Answers = datatypes.NewJSONType(models.Selections{})
	}
}
