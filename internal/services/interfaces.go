package services

import (
	"context"

	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

// Every operation takes the caller explicitly. Role and ownership checks
// happen inside the service, never in the transport.

type AttemptService interface {
	Submit(ctx context.Context, principal *identity.Principal, quizID string, selections models.Selections) (*models.Attempt, error)
	Get(ctx context.Context, principal *identity.Principal, id string) (*models.Attempt, error)
	ListMine(ctx context.Context, principal *identity.Principal) ([]*models.Attempt, error)
}

type QuizService interface {
	Create(ctx context.Context, principal *identity.Principal, req *CreateQuizRequest) (*models.Quiz, error)
	Get(ctx context.Context, principal *identity.Principal, id string) (*models.Quiz, error)
	ListMine(ctx context.Context, principal *identity.Principal) ([]models.TeacherQuizRow, error)
	Available(ctx context.Context, principal *identity.Principal) (*models.StudentDashboard, error)
	Results(ctx context.Context, principal *identity.Principal, id string) (*models.QuizResults, error)
	Delete(ctx context.Context, principal *identity.Principal, id string) error
}

type UserService interface {
	CompleteProfile(ctx context.Context, principal *identity.Principal, req *CompleteProfileRequest) (*models.User, error)
	Students(ctx context.Context, principal *identity.Principal, filter StudentFilter) ([]models.StudentSummary, error)
	DeleteStudent(ctx context.Context, principal *identity.Principal, id string) error
	Teachers(ctx context.Context, principal *identity.Principal) ([]models.TeacherRosterEntry, error)
	CreateTeacher(ctx context.Context, principal *identity.Principal, req *CreateTeacherRequest) (*models.User, error)
	DeleteTeacher(ctx context.Context, principal *identity.Principal, id string) error
}

type AnalyticsService interface {
	Overview(ctx context.Context, principal *identity.Principal) (*models.Overview, error)
	Dashboard(ctx context.Context, principal *identity.Principal) (*models.AdminAnalytics, error)
}

type ExportService interface {
	ExportResults(ctx context.Context, principal *identity.Principal, quizID string) ([]byte, error)
}

// ===== REQUESTS =====

type CreateQuizRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	TargetGrade models.Grade      `json:"target_grade" binding:"required"`
	TimeLimit   int               `json:"time_limit"`
	Questions   []QuestionRequest `json:"questions"`
}

// QuestionRequest names the correct answer by id or, when ids are left for
// the server to generate, by position.
type QuestionRequest struct {
	ID                 string          `json:"id"`
	Text               string          `json:"text"`
	Answers            []AnswerRequest `json:"answers"`
	CorrectAnswerID    string          `json:"correct_answer_id"`
	CorrectAnswerIndex *int            `json:"correct_answer_index"`
}

type AnswerRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type SubmitAttemptRequest struct {
	QuizID  string            `json:"quiz_id" binding:"required"`
	Answers models.Selections `json:"answers"`
}

type CompleteProfileRequest struct {
	Name  string       `json:"name"`
	Grade models.Grade `json:"grade"`
}

type CreateTeacherRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password"`
}
