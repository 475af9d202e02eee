package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuizPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:      db,
		helpers: helpers,
	}
}

// Create stores a new quiz with its questions in a single row.
func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	if err := q.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	if err := q.helpers.checkRecord("quiz", quiz.ID, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Delete removes the quiz only. Attempts that reference it keep their copy of the title.
func (q *QuizPostgreSQL) Delete(ctx context.Context, id string) error {
	result := q.db.WithContext(ctx).Delete(&models.Quiz{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete quiz: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (q *QuizPostgreSQL) List(ctx context.Context) ([]*models.Quiz, error) {
	return q.find(ctx, "", nil)
}

func (q *QuizPostgreSQL) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Quiz, error) {
	return q.find(ctx, "teacher_id = ?", teacherID)
}

func (q *QuizPostgreSQL) ListByGrade(ctx context.Context, grade models.Grade) ([]*models.Quiz, error) {
	return q.find(ctx, "target_grade = ?", grade)
}

func (q *QuizPostgreSQL) find(ctx context.Context, query string, arg interface{}) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	db := q.db.WithContext(ctx).Order("created_at DESC")
	if query != "" {
		db = db.Where(query, arg)
	}
	if err := db.Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return keepValid(q.helpers, "quiz", quizzes, func(quiz *models.Quiz) string { return quiz.ID }), nil
}
