package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
)

// Resolver turns verified claims into a Principal backed by a profile row.
type Resolver struct {
	users  repositories.UserRepository
	logger *slog.Logger
}

func NewResolver(users repositories.UserRepository, logger *slog.Logger) *Resolver {
	return &Resolver{users: users, logger: logger}
}

// Resolve loads the profile for claims.Subject. A Google subject seen for the
// first time gets a student profile that still has to be completed; any other
// provider must already have a profile. The stored role always wins over
// anything carried in the token.
func (r *Resolver) Resolve(ctx context.Context, claims *Claims) (*Principal, error) {
	user, err := r.users.GetByID(ctx, claims.Subject)
	if err == nil {
		return NewPrincipal(user, claims.Provider), nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if claims.Provider != ProviderGoogle {
		r.logger.Warn("Token subject has no profile",
			"user_id", claims.Subject,
			"provider", claims.Provider)
		return nil, ErrUnknownAccount
	}

	user = &models.User{
		ID:              claims.Subject,
		Email:           strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:            strings.TrimSpace(claims.Name),
		Role:            models.RoleStudent,
		ProfileComplete: false,
	}
	if err := r.users.Create(ctx, user); err != nil {
		// Another request for the same subject may have won the insert.
		if existing, getErr := r.users.GetByID(ctx, claims.Subject); getErr == nil {
			return NewPrincipal(existing, claims.Provider), nil
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	r.logger.Info("Created student profile on first sign-in",
		"user_id", user.ID,
		"provider", claims.Provider)

	return NewPrincipal(user, claims.Provider), nil
}

// Authenticate verifies token with verifier and resolves the caller.
func (r *Resolver) Authenticate(ctx context.Context, verifier TokenVerifier, token string) (*Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	claims, err := verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, claims)
}
