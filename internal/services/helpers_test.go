package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errStoreDown = errors.New("store unavailable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepository(t *testing.T) repositories.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "quiz.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo := postgres.NewRepository(db, validator.New(), testLogger())
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func mustCreateUser(t *testing.T, repo repositories.Repository, user *models.User) *identity.Principal {
	t.Helper()
	require.NoError(t, repo.User().Create(context.Background(), user))
	return identity.NewPrincipal(user, identity.ProviderJWT)
}

func student(id, name string, grade models.Grade) *models.User {
	return &models.User{
		ID:              id,
		Email:           id + "@school.test",
		Name:            name,
		Role:            models.RoleStudent,
		Grade:           grade,
		ProfileComplete: true,
	}
}

func teacher(id string) *models.User {
	return &models.User{ID: id, Email: id + "@school.test", Name: "Teacher " + id, Role: models.RoleTeacher, ProfileComplete: true}
}

func admin(id string) *models.User {
	return &models.User{ID: id, Email: id + "@school.test", Name: "Admin", Role: models.RoleAdmin, ProfileComplete: true}
}

// threeQuestionQuiz has correct answers A, B and C.
func threeQuestionQuiz(id, teacherID string, grade models.Grade) *models.Quiz {
	question := func(qid, correct string) models.Question {
		return models.Question{
			ID:   qid,
			Text: "Question " + qid,
			Answers: []models.Answer{
				{ID: "A", Text: "first"}, {ID: "B", Text: "second"},
				{ID: "C", Text: "third"}, {ID: "X", Text: "none"},
			},
			CorrectAnswerID: correct,
		}
	}
	return &models.Quiz{
		ID:          id,
		Title:       "Quiz " + id,
		TargetGrade: grade,
		TimeLimit:   10,
		TeacherID:   teacherID,
		Questions:   []models.Question{question("q1", "A"), question("q2", "B"), question("q3", "C")},
		CreatedAt:   time.Now().UTC(),
	}
}

func attemptOf(id string, s *models.User, quiz *models.Quiz, score, total int) *models.Attempt {
	return &models.Attempt{
		ID:             id,
		StudentID:      s.ID,
		StudentName:    s.Name,
		StudentGrade:   s.Grade,
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		Score:          score,
		TotalQuestions: total,
		Answers:        datatypes.NewJSONType(models.Selections{"q1": "A"}),
		SubmittedAt:    time.Now().UTC(),
	}
}

func newPublisher() *events.MockEventPublisher {
	return events.NewMockEventPublisher(testLogger())
}

// faultyRepository swaps in per-collection stores that fail on purpose.
type faultyRepository struct {
	repositories.Repository
	users    repositories.UserRepository
	quizzes  repositories.QuizRepository
	attempts repositories.AttemptRepository
}

func (r *faultyRepository) User() repositories.UserRepository {
	if r.users != nil {
		return r.users
	}
	return r.Repository.User()
}

func (r *faultyRepository) Quiz() repositories.QuizRepository {
	if r.quizzes != nil {
		return r.quizzes
	}
	return r.Repository.Quiz()
}

func (r *faultyRepository) Attempt() repositories.AttemptRepository {
	if r.attempts != nil {
		return r.attempts
	}
	return r.Repository.Attempt()
}

type failingAttempts struct {
	repositories.AttemptRepository
	failStudent string
	failList    bool
	failCreate  bool
}

func (f *failingAttempts) ListByStudent(ctx context.Context, studentID string) ([]*models.Attempt, error) {
	if studentID == f.failStudent {
		return nil, errStoreDown
	}
	return f.AttemptRepository.ListByStudent(ctx, studentID)
}

func (f *failingAttempts) List(ctx context.Context) ([]*models.Attempt, error) {
	if f.failList {
		return nil, errStoreDown
	}
	return f.AttemptRepository.List(ctx)
}

func (f *failingAttempts) Create(ctx context.Context, attempt *models.Attempt) error {
	if f.failCreate {
		return errStoreDown
	}
	return f.AttemptRepository.Create(ctx, attempt)
}

type failingUsers struct {
	repositories.UserRepository
	failGrade models.Grade
}

func (f *failingUsers) ListByGrade(ctx context.Context, grade models.Grade) ([]*models.User, error) {
	if grade == f.failGrade {
		return nil, errStoreDown
	}
	return f.UserRepository.ListByGrade(ctx, grade)
}

func principalFor(user *models.User) *identity.Principal {
	return identity.NewPrincipal(user, identity.ProviderJWT)
}
