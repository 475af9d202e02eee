package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type attemptService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAttemptService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

// Submit scores selections against the quiz and stores one new attempt.
// Repeated submissions each create a record.
func (s *attemptService) Submit(ctx context.Context, principal *identity.Principal, quizID string, selections models.Selections) (*models.Attempt, error) {
	op := startOperation(s.logger, "attempt.submit", principal, quizID)
	attempt, err := s.submit(ctx, principal, quizID, selections)
	op.finish(ctx, err)
	return attempt, err
}

func (s *attemptService) submit(ctx context.Context, principal *identity.Principal, quizID string, selections models.Selections) (*models.Attempt, error) {
	if err := requireRole(principal, "attempt", "submit", models.RoleStudent); err != nil {
		return nil, err
	}
	if !principal.ProfileComplete() {
		return nil, ErrProfileIncomplete
	}
	if selections.Empty() {
		return nil, NewValidationError("answers", "at least one question must be answered", nil)
	}

	s.logger.Info("Submitting quiz attempt",
		"quiz_id", quizID,
		"student_id", principal.UserID,
		"answered", len(selections))

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		return nil, storeError("load quiz", err, ErrQuizNotFound)
	}

	attempt := &models.Attempt{
		ID:             uuid.NewString(),
		StudentID:      principal.UserID,
		StudentName:    principal.Profile.Name,
		StudentGrade:   principal.Profile.Grade,
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		Score:          Score(quiz, selections),
		TotalQuestions: quiz.TotalQuestions(),
		Answers:        datatypes.NewJSONType(selections.Clone()),
		SubmittedAt:    s.now().UTC(),
	}
	if err := s.validator.Validate(attempt); err != nil {
		return nil, err
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, storeError("save attempt", err, nil)
	}

	s.logger.Info("Quiz attempt recorded",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"score", attempt.Score,
		"total", attempt.TotalQuestions)

	publishEvent(ctx, s.publisher, s.logger, events.NewAttemptSubmittedEvent(events.AttemptSubmittedEvent{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		StudentID:      attempt.StudentID,
		StudentGrade:   string(attempt.StudentGrade),
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		SubmittedAt:    attempt.SubmittedAt,
	}))

	return attempt, nil
}

// Get returns one attempt to its student, the quiz owner or an admin.
func (s *attemptService) Get(ctx context.Context, principal *identity.Principal, id string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load attempt", err, ErrAttemptNotFound)
	}

	switch {
	case principal.Is(models.RoleAdmin):
		return attempt, nil
	case principal.Is(models.RoleStudent):
		if attempt.StudentID == principal.UserID {
			return attempt, nil
		}
	case principal.Is(models.RoleTeacher):
		quiz, err := s.repo.Quiz().GetByID(ctx, attempt.QuizID)
		if err == nil && quiz.TeacherID == principal.UserID {
			return attempt, nil
		}
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, storeError("load quiz", err, nil)
		}
	}
	return nil, NewPermissionError(principalID(principal), id, "attempt", "view", "not related to this attempt")
}

func (s *attemptService) ListMine(ctx context.Context, principal *identity.Principal) ([]*models.Attempt, error) {
	if err := requireRole(principal, "attempt", "list", models.RoleStudent); err != nil {
		return nil, err
	}
	attempts, err := s.repo.Attempt().ListByStudent(ctx, principal.UserID)
	if err != nil {
		return nil, storeError("list attempts", err, nil)
	}
	return attempts, nil
}
