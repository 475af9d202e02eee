package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/google/uuid"
)

type userService struct {
	repo        repositories.Repository
	provisioner identity.AccountProvisioner
	publisher   events.EventPublisher
	logger      *slog.Logger
	validator   *validator.Validator
}

func NewUserService(
	repo repositories.Repository,
	provisioner identity.AccountProvisioner,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) UserService {
	if provisioner == nil {
		provisioner = identity.NoopProvisioner{}
	}
	return &userService{
		repo:        repo,
		provisioner: provisioner,
		publisher:   publisher,
		logger:      logger,
		validator:   validator,
	}
}

// ===== PROFILE =====

func (s *userService) CompleteProfile(ctx context.Context, principal *identity.Principal, req *CompleteProfileRequest) (*models.User, error) {
	op := startOperation(s.logger, "profile.complete", principal, principalID(principal))
	user, err := s.completeProfile(ctx, principal, req)
	op.finish(ctx, err)
	return user, err
}

func (s *userService) completeProfile(ctx context.Context, principal *identity.Principal, req *CompleteProfileRequest) (*models.User, error) {
	if err := requireRole(principal, "profile", "complete", models.RoleStudent); err != nil {
		return nil, err
	}

	var errs ValidationErrors
	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs.Field("name", "name is required", nil)
	}
	if !req.Grade.Valid() {
		errs.Field("grade", "must be a grade between 6 and 12", req.Grade)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	user := *principal.Profile
	user.Name = name
	user.Grade = req.Grade
	user.ProfileComplete = true
	if err := s.validator.Validate(&user); err != nil {
		return nil, err
	}

	if err := s.repo.User().Update(ctx, &user); err != nil {
		return nil, storeError("update profile", err, ErrUserNotFound)
	}

	s.logger.Info("Student profile completed", "user_id", user.ID, "grade", user.Grade)
	return &user, nil
}

// ===== STUDENT ROSTER =====

// Students lists every student with attempt statistics. A student whose
// attempts fail to load is kept and flagged instead of failing the roster.
func (s *userService) Students(ctx context.Context, principal *identity.Principal, filter StudentFilter) ([]models.StudentSummary, error) {
	if err := requireRole(principal, "student", "list", models.RoleAdmin); err != nil {
		return nil, err
	}

	students, err := s.repo.User().ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, storeError("list students", err, nil)
	}

	roster := make([]models.StudentSummary, 0, len(students))
	for _, student := range students {
		attempts, err := s.repo.Attempt().ListByStudent(ctx, student.ID)
		if err != nil {
			s.logger.Warn("Failed to load attempts for student", "student_id", student.ID, "error", err)
			roster = append(roster, models.StudentSummary{User: *student, Unavailable: true})
			continue
		}
		roster = append(roster, StudentSummaries([]*models.User{student}, attempts)...)
	}
	SortStudents(roster)

	return FilterStudents(roster, filter), nil
}

// DeleteStudent removes the profile only. Past attempts keep their copied
// name and grade.
func (s *userService) DeleteStudent(ctx context.Context, principal *identity.Principal, id string) error {
	return s.deleteUser(ctx, principal, id, models.RoleStudent)
}

// ===== TEACHER ROSTER =====

func (s *userService) Teachers(ctx context.Context, principal *identity.Principal) ([]models.TeacherRosterEntry, error) {
	if err := requireRole(principal, "teacher", "list", models.RoleAdmin); err != nil {
		return nil, err
	}

	teachers, err := s.repo.User().ListByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, storeError("list teachers", err, nil)
	}

	roster := make([]models.TeacherRosterEntry, 0, len(teachers))
	for _, teacher := range teachers {
		quizzes, err := s.repo.Quiz().ListByTeacher(ctx, teacher.ID)
		if err != nil {
			s.logger.Warn("Failed to load quizzes for teacher", "teacher_id", teacher.ID, "error", err)
			roster = append(roster, models.TeacherRosterEntry{User: *teacher, Unavailable: true})
			continue
		}
		roster = append(roster, TeacherRoster([]*models.User{teacher}, quizzes)...)
	}
	return roster, nil
}

func (s *userService) CreateTeacher(ctx context.Context, principal *identity.Principal, req *CreateTeacherRequest) (*models.User, error) {
	op := startOperation(s.logger, "teacher.create", principal, "")
	teacher, err := s.createTeacher(ctx, principal, req)
	op.finish(ctx, err)
	return teacher, err
}

func (s *userService) createTeacher(ctx context.Context, principal *identity.Principal, req *CreateTeacherRequest) (*models.User, error) {
	if err := requireRole(principal, "teacher", "create", models.RoleAdmin); err != nil {
		return nil, err
	}

	teacher := &models.User{
		ID:              uuid.NewString(),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Name:            strings.TrimSpace(req.Name),
		Role:            models.RoleTeacher,
		ProfileComplete: true,
	}

	var errs ValidationErrors
	if teacher.Email == "" {
		errs.Field("email", "email is required", nil)
	}
	if teacher.Name == "" {
		errs.Field("name", "name is required", nil)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(teacher); err != nil {
		return nil, err
	}

	_, err := s.repo.User().GetByEmail(ctx, teacher.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !repositories.IsNotFoundError(err):
		return nil, storeError("check email", err, nil)
	}

	if err := s.provisioner.Provision(ctx, teacher, req.Password); err != nil {
		return nil, &BackendError{Op: "provision account", Err: err}
	}
	if err := s.repo.User().Create(ctx, teacher); err != nil {
		if derr := s.provisioner.Deprovision(ctx, teacher); derr != nil {
			s.logger.Error("Failed to roll back provisioned account", "user_id", teacher.ID, "error", derr)
		}
		return nil, storeError("save teacher", err, nil)
	}

	s.logger.Info("Teacher account created", "user_id", teacher.ID, "created_by", principal.UserID)
	return teacher, nil
}

func (s *userService) DeleteTeacher(ctx context.Context, principal *identity.Principal, id string) error {
	return s.deleteUser(ctx, principal, id, models.RoleTeacher)
}

// deleteUser never cascades: quizzes and attempts referencing the user stay.
func (s *userService) deleteUser(ctx context.Context, principal *identity.Principal, id string, role models.UserRole) error {
	op := startOperation(s.logger, string(role)+".delete", principal, id)
	err := s.removeUser(ctx, principal, id, role)
	op.finish(ctx, err)
	return err
}

func (s *userService) removeUser(ctx context.Context, principal *identity.Principal, id string, role models.UserRole) error {
	if err := requireRole(principal, string(role), "delete", models.RoleAdmin); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return storeError("load user", err, ErrUserNotFound)
	}
	if user.Role != role {
		return ErrUserNotFound
	}

	if err := s.repo.User().Delete(ctx, id); err != nil {
		return storeError("delete user", err, ErrUserNotFound)
	}
	if role == models.RoleTeacher {
		if err := s.provisioner.Deprovision(ctx, user); err != nil {
			s.logger.Warn("Failed to remove identity provider account", "user_id", id, "error", err)
		}
	}

	s.logger.Info("User deleted", "user_id", id, "role", role, "deleted_by", principal.UserID)

	publishEvent(ctx, s.publisher, s.logger, events.NewUserDeletedEvent(events.UserDeletedEvent{
		UserID:    id,
		Role:      string(role),
		DeletedBy: principal.UserID,
	}))
	return nil
}
