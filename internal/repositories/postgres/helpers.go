package postgres

import (
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
)

// SharedHelpers validates records as they leave the database so services never
// see a document that breaks the model's invariants.
type SharedHelpers struct {
	validator *validator.Validator
	logger    *slog.Logger
}

func NewSharedHelpers(v *validator.Validator, logger *slog.Logger) *SharedHelpers {
	return &SharedHelpers{
		validator: v,
		logger:    logger,
	}
}

// checkRecord wraps validation failures in ErrMalformedRecord.
func (h *SharedHelpers) checkRecord(kind, id string, record interface{}) error {
	if err := h.validator.Validate(record); err != nil {
		h.logger.Warn("Rejected malformed record",
			"kind", kind,
			"id", id,
			"error", err)
		return fmt.Errorf("%w: %s %s: %v", repositories.ErrMalformedRecord, kind, id, err)
	}
	return nil
}

// keepValid drops malformed records from a scan instead of failing the whole read.
func keepValid[T any](h *SharedHelpers, kind string, records []T, id func(T) string) []T {
	out := records[:0]
	for _, record := range records {
		if err := h.checkRecord(kind, id(record), record); err != nil {
			continue
		}
		out = append(out, record)
	}
	return out
}
