package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
)

// analyticsService loads full collections and hands them to the pure
// aggregations in analytics.go. A failed load never aborts a dashboard;
// the missing part is named in Unavailable instead.
type analyticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger,
	}
}

type snapshot struct {
	quizzes  []*models.Quiz
	attempts []*models.Attempt
	students []*models.User
	teachers []*models.User

	unavailable []string
}

func (s *analyticsService) load(ctx context.Context) *snapshot {
	snap := &snapshot{}
	var err error

	if snap.quizzes, err = s.repo.Quiz().List(ctx); err != nil {
		s.markUnavailable(snap, "quizzes", err)
	}
	if snap.attempts, err = s.repo.Attempt().List(ctx); err != nil {
		s.markUnavailable(snap, "attempts", err)
	}
	if snap.students, err = s.repo.User().ListByRole(ctx, models.RoleStudent); err != nil {
		s.markUnavailable(snap, "students", err)
	}
	if snap.teachers, err = s.repo.User().ListByRole(ctx, models.RoleTeacher); err != nil {
		s.markUnavailable(snap, "teachers", err)
	}
	return snap
}

func (s *analyticsService) markUnavailable(snap *snapshot, part string, err error) {
	s.logger.Warn("Analytics source unavailable", "source", part, "error", err)
	snap.unavailable = append(snap.unavailable, part)
}

func overviewOf(snap *snapshot) models.Overview {
	return models.Overview{
		TotalQuizzes:      len(snap.quizzes),
		TotalAttempts:     len(snap.attempts),
		TotalStudents:     len(snap.students),
		TotalTeachers:     len(snap.teachers),
		AveragePercentage: OverallPercentage(snap.attempts),
		Unavailable:       snap.unavailable,
	}
}

func (s *analyticsService) Overview(ctx context.Context, principal *identity.Principal) (*models.Overview, error) {
	if err := requireRole(principal, "analytics", "view", models.RoleAdmin); err != nil {
		return nil, err
	}
	overview := overviewOf(s.load(ctx))
	return &overview, nil
}

func (s *analyticsService) Dashboard(ctx context.Context, principal *identity.Principal) (*models.AdminAnalytics, error) {
	if err := requireRole(principal, "analytics", "view", models.RoleAdmin); err != nil {
		return nil, err
	}

	s.logger.Info("Building admin analytics", "admin_id", principal.UserID)

	snap := s.load(ctx)
	return &models.AdminAnalytics{
		Overview:          overviewOf(snap),
		GradeDistribution: s.gradeDistribution(ctx),
		TopPerformers:     TopPerformers(snap.attempts, DefaultMinAttempts, DefaultTopPerformers),
		RecentQuizzes:     RecentQuizzes(snap.quizzes, DefaultRecentQuizzes),
		Unavailable:       snap.unavailable,
	}, nil
}

// gradeDistribution loads each grade separately so one failing query only
// blanks the counts it feeds.
func (s *analyticsService) gradeDistribution(ctx context.Context) []models.GradeDistribution {
	out := make([]models.GradeDistribution, 0, len(models.Grades))
	for _, grade := range models.Grades {
		var unavailable []string

		users, err := s.repo.User().ListByGrade(ctx, grade)
		if err != nil {
			s.logger.Warn("Failed to load students for grade", "grade", grade, "error", err)
			unavailable = append(unavailable, "student_count")
		}
		quizzes, err := s.repo.Quiz().ListByGrade(ctx, grade)
		if err != nil {
			s.logger.Warn("Failed to load quizzes for grade", "grade", grade, "error", err)
			unavailable = append(unavailable, "quiz_count")
		}
		attempts, err := s.repo.Attempt().ListByGrade(ctx, grade)
		if err != nil {
			s.logger.Warn("Failed to load attempts for grade", "grade", grade, "error", err)
			unavailable = append(unavailable, "attempt_count")
		}

		row := PerGradeDistribution(quizzes, attempts, users, []models.Grade{grade})[0]
		row.Unavailable = unavailable
		out = append(out, row)
	}
	return out
}
