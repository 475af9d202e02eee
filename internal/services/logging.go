package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/identity"
)

// operation logs the outcome of one state-changing call with its duration.
// Caller mistakes log at warn, storage failures at error.
type operation struct {
	logger     *slog.Logger
	name       string
	userID     string
	resourceID string
	started    time.Time
}

func startOperation(logger *slog.Logger, name string, principal *identity.Principal, resourceID string) *operation {
	return &operation{
		logger:     logger,
		name:       name,
		userID:     principalID(principal),
		resourceID: resourceID,
		started:    time.Now(),
	}
}

func (o *operation) finish(ctx context.Context, err error) {
	level, status := slog.LevelInfo, "success"
	switch {
	case err == nil:
	case IsValidation(err):
		level, status = slog.LevelWarn, "validation_error"
	case IsPermission(err), errors.Is(err, ErrProfileIncomplete):
		level, status = slog.LevelWarn, "forbidden"
	case IsNotFound(err):
		status = "not_found"
	case IsConflict(err):
		level, status = slog.LevelWarn, "conflict"
	default:
		level, status = slog.LevelError, "error"
	}

	attrs := []slog.Attr{
		slog.String("operation", o.name),
		slog.String("user_id", o.userID),
		slog.String("status", status),
		slog.Duration("duration", time.Since(o.started)),
	}
	if o.resourceID != "" {
		attrs = append(attrs, slog.String("resource_id", o.resourceID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		var backendErr *BackendError
		if errors.As(err, &backendErr) {
			attrs = append(attrs, slog.String("backend_op", backendErr.Op))
		}
	}

	o.logger.LogAttrs(ctx, level, "Operation completed", attrs...)
}
