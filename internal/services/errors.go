package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-portal/internal/errors"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound = errors.New("resource not found")

	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrProfileIncomplete is returned to students who have not yet set their
	// name and grade.
	ErrProfileIncomplete = errors.New("profile is incomplete")
	ErrEmailTaken        = errors.New("email already registered")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id,omitempty"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	if pe.ResourceID == "" {
		return fmt.Sprintf("permission denied: user %s cannot %s %s - %s",
			pe.UserID, pe.Action, pe.Resource, pe.Reason)
	}
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// BackendError wraps a storage failure. Callers may retry the whole request;
// the service never does.
type BackendError struct {
	Op  string
	Err error
}

func (be *BackendError) Error() string {
	return fmt.Sprintf("backend failure during %s: %v", be.Op, be.Err)
}

func (be *BackendError) Unwrap() error {
	return be.Err
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// storeError maps a repository failure: misses become notFound when one is
// given, everything else is a BackendError.
func storeError(op string, err error, notFound error) error {
	if notFound != nil && repositories.IsNotFoundError(err) {
		return notFound
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken)
}
