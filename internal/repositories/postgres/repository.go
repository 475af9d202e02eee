package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"gorm.io/gorm"
)

type Repository struct {
	db       *gorm.DB
	users    repositories.UserRepository
	quizzes  repositories.QuizRepository
	attempts repositories.AttemptRepository
}

func NewRepository(db *gorm.DB, v *validator.Validator, logger *slog.Logger) *Repository {
	helpers := NewSharedHelpers(v, logger)
	return &Repository{
		db:       db,
		users:    NewUserPostgreSQL(db, helpers),
		quizzes:  NewQuizPostgreSQL(db, helpers),
		attempts: NewAttemptPostgreSQL(db, helpers),
	}
}

func (r *Repository) User() repositories.UserRepository       { return r.users }
func (r *Repository) Quiz() repositories.QuizRepository       { return r.quizzes }
func (r *Repository) Attempt() repositories.AttemptRepository { return r.attempts }

// Migrate creates or updates the three collections. There are no foreign keys;
// records reference each other by id only.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Quiz{}, &models.Attempt{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
