package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type quizService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewQuizService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== CORE QUIZ OPERATIONS =====

func (s *quizService) Create(ctx context.Context, principal *identity.Principal, req *CreateQuizRequest) (*models.Quiz, error) {
	if err := requireRole(principal, "quiz", "create", models.RoleTeacher); err != nil {
		return nil, err
	}

	s.logger.Info("Creating quiz",
		"title", req.Title,
		"target_grade", req.TargetGrade,
		"teacher_id", principal.UserID)

	quiz := s.buildQuiz(principal.UserID, req)
	if err := s.validator.Validate(quiz); err != nil {
		return nil, err
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, storeError("save quiz", err, nil)
	}

	s.logger.Info("Quiz created successfully",
		"quiz_id", quiz.ID,
		"questions", quiz.TotalQuestions())

	publishEvent(ctx, s.publisher, s.logger, events.NewQuizCreatedEvent(events.QuizCreatedEvent{
		QuizID:        quiz.ID,
		Title:         quiz.Title,
		TargetGrade:   string(quiz.TargetGrade),
		TeacherID:     quiz.TeacherID,
		QuestionCount: quiz.TotalQuestions(),
		TimeLimit:     quiz.TimeLimit,
	}))

	return quiz, nil
}

// buildQuiz trims input, fills in missing ids and resolves answer indexes.
func (s *quizService) buildQuiz(teacherID string, req *CreateQuizRequest) *models.Quiz {
	questions := make(datatypes.JSONSlice[models.Question], 0, len(req.Questions))
	for _, qr := range req.Questions {
		q := models.Question{
			ID:              strings.TrimSpace(qr.ID),
			Text:            strings.TrimSpace(qr.Text),
			CorrectAnswerID: strings.TrimSpace(qr.CorrectAnswerID),
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		for _, ar := range qr.Answers {
			a := models.Answer{ID: strings.TrimSpace(ar.ID), Text: strings.TrimSpace(ar.Text)}
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			q.Answers = append(q.Answers, a)
		}
		if q.CorrectAnswerID == "" && qr.CorrectAnswerIndex != nil {
			if i := *qr.CorrectAnswerIndex; i >= 0 && i < len(q.Answers) {
				q.CorrectAnswerID = q.Answers[i].ID
			}
		}
		questions = append(questions, q)
	}

	return &models.Quiz{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		TargetGrade: req.TargetGrade,
		TimeLimit:   req.TimeLimit,
		TeacherID:   teacherID,
		Questions:   questions,
		CreatedAt:   s.now().UTC(),
	}
}

// Get hides the answer key from students.
func (s *quizService) Get(ctx context.Context, principal *identity.Principal, id string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load quiz", err, ErrQuizNotFound)
	}
	if principal.Is(models.RoleStudent) {
		return quiz.WithoutAnswerKey(), nil
	}
	return quiz, nil
}

// ListMine builds the teacher dashboard. A quiz whose attempts cannot be
// loaded is still listed, flagged unavailable.
func (s *quizService) ListMine(ctx context.Context, principal *identity.Principal) ([]models.TeacherQuizRow, error) {
	if err := requireRole(principal, "quiz", "list", models.RoleTeacher); err != nil {
		return nil, err
	}

	quizzes, err := s.repo.Quiz().ListByTeacher(ctx, principal.UserID)
	if err != nil {
		return nil, storeError("list quizzes", err, nil)
	}

	rows := make([]models.TeacherQuizRow, 0, len(quizzes))
	for _, quiz := range quizzes {
		row := models.TeacherQuizRow{Quiz: quiz}
		attempts, err := s.repo.Attempt().ListByQuiz(ctx, quiz.ID)
		if err != nil {
			s.logger.Warn("Failed to load attempts for quiz", "quiz_id", quiz.ID, "error", err)
			row.Unavailable = true
			row.Summary = models.TeacherSummary{AverageScore: "N/A"}
		} else {
			row.Summary = TeacherSummary(quiz, attempts)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Available lists quizzes for the student's grade that the student has not
// attempted yet. Nothing stops a second submission; the list only steers.
func (s *quizService) Available(ctx context.Context, principal *identity.Principal) (*models.StudentDashboard, error) {
	if err := requireRole(principal, "quiz", "list", models.RoleStudent); err != nil {
		return nil, err
	}
	if !principal.ProfileComplete() {
		return nil, ErrProfileIncomplete
	}

	quizzes, err := s.repo.Quiz().ListByGrade(ctx, principal.Grade())
	if err != nil {
		return nil, storeError("list quizzes", err, nil)
	}
	attempts, err := s.repo.Attempt().ListByStudent(ctx, principal.UserID)
	if err != nil {
		return nil, storeError("list attempts", err, nil)
	}

	attempted := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		attempted[a.QuizID] = true
	}

	available := make([]*models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if !attempted[quiz.ID] {
			available = append(available, quiz.WithoutAnswerKey())
		}
	}

	return &models.StudentDashboard{
		Student:   principal.Profile,
		Available: available,
		Attempts:  attempts,
	}, nil
}

func (s *quizService) Results(ctx context.Context, principal *identity.Principal, id string) (*models.QuizResults, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load quiz", err, ErrQuizNotFound)
	}
	if err := requireQuizOwner(principal, quiz, "view results of"); err != nil {
		return nil, err
	}

	attempts, err := s.repo.Attempt().ListByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, storeError("list attempts", err, nil)
	}

	return &models.QuizResults{
		Quiz:       quiz,
		Attempts:   attempts,
		Statistics: QuizStatistics(quiz, attempts),
	}, nil
}

// Delete removes the quiz definition. Its attempts stay for reporting.
func (s *quizService) Delete(ctx context.Context, principal *identity.Principal, id string) error {
	op := startOperation(s.logger, "quiz.delete", principal, id)
	err := s.delete(ctx, principal, id)
	op.finish(ctx, err)
	return err
}

func (s *quizService) delete(ctx context.Context, principal *identity.Principal, id string) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		return storeError("load quiz", err, ErrQuizNotFound)
	}
	if err := requireQuizOwner(principal, quiz, "delete"); err != nil {
		return err
	}

	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return storeError("delete quiz", err, ErrQuizNotFound)
	}

	s.logger.Info("Quiz deleted", "quiz_id", id, "deleted_by", principal.UserID)

	publishEvent(ctx, s.publisher, s.logger, events.NewQuizDeletedEvent(events.QuizDeletedEvent{
		QuizID:    id,
		DeletedBy: principal.UserID,
	}))
	return nil
}
