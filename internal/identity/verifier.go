package identity

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

var (
	ErrMissingToken   = errors.New("missing bearer token")
	ErrInvalidToken   = errors.New("invalid token")
	// ErrUnknownAccount is returned for a valid token whose subject has no
	// profile and whose provider does not allow self sign-up.
	ErrUnknownAccount = errors.New("no account for token subject")
)

// Claims are the provider-neutral facts extracted from a verified token.
type Claims struct {
	Subject  string
	Email    string
	Name     string
	Role     models.UserRole // only set by tokens this service issued
	Provider string
}

// TokenVerifier checks a bearer token and returns its claims. Implementations
// wrap ErrInvalidToken for any token they reject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}
