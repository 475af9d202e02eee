package services

import (
	"log/slog"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
)

// ServiceManager hands out the services the transport layer needs.
type ServiceManager interface {
	Quiz() QuizService
	Attempt() AttemptService
	User() UserService
	Analytics() AnalyticsService
	Export() ExportService
}

type serviceManager struct {
	quiz      QuizService
	attempt   AttemptService
	user      UserService
	analytics AnalyticsService
	export    ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	provisioner identity.AccountProvisioner,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) ServiceManager {
	quiz := NewQuizService(repo, publisher, logger.With("service", "quiz"), validator)
	return &serviceManager{
		quiz:      quiz,
		attempt:   NewAttemptService(repo, publisher, logger.With("service", "attempt"), validator),
		user:      NewUserService(repo, provisioner, publisher, logger.With("service", "user"), validator),
		analytics: NewAnalyticsService(repo, logger.With("service", "analytics")),
		export:    NewExportService(quiz, logger.With("service", "export")),
	}
}

func (m *serviceManager) Quiz() QuizService           { return m.quiz }
func (m *serviceManager) Attempt() AttemptService     { return m.attempt }
func (m *serviceManager) User() UserService           { return m.user }
func (m *serviceManager) Analytics() AnalyticsService { return m.analytics }
func (m *serviceManager) Export() ExportService       { return m.export }
