package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-portal/internal/cache"
	"github.com/SAP-F-2025/quiz-portal/internal/config"
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/SAP-F-2025/quiz-portal/pkg"
	"github.com/redis/go-redis/v9"
)

const tokenIssuer = "quiz-portal"

func loadConfig(path string) (*config.Config, utils.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, utils.NewLogger(cfg.Environment, cfg.LogLevel), nil
}

func openRepository(cfg *config.Config, v *validator.Validator, logger *slog.Logger) (*postgres.Repository, error) {
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	return postgres.NewRepository(db, v, logger.With("component", "repository")), nil
}

// withCache puts the redis quiz cache in front of repo. A cache that cannot
// be reached is skipped; the portal works without it.
func withCache(ctx context.Context, cfg *config.Config, repo repositories.Repository, logger utils.Logger) (repositories.Repository, *redis.Client) {
	if !cfg.Cache.Enabled {
		return repo, nil
	}

	client, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Quiz cache disabled", "error", err)
		return repo, nil
	}

	quizzes := cache.NewCachedQuizRepository(repo.Quiz(), cache.NewRedisCache(client, logger), cfg.Cache.QuizTTL, logger)
	return cache.WithQuizCache(repo, quizzes), client
}

type authStack struct {
	verifier    identity.TokenVerifier
	google      identity.TokenVerifier
	provisioner identity.AccountProvisioner
	jwt         *identity.JWTVerifier
}

func newAuthStack(cfg *config.Config, logger *slog.Logger) (*authStack, error) {
	stack := &authStack{provisioner: identity.NoopProvisioner{}}

	switch cfg.Auth.Provider {
	case "casdoor":
		if cfg.Auth.Casdoor.Endpoint == "" {
			return nil, fmt.Errorf("casdoor endpoint not configured")
		}
		client := identity.NewCasdoorClient(cfg.Auth.Casdoor)
		stack.verifier = identity.NewCasdoorVerifier(client)
		stack.provisioner = identity.NewCasdoorProvisioner(client, cfg.Auth.Casdoor.Organization, logger.With("component", "casdoor"))
	default:
		if cfg.Auth.JWTSecret == "" {
			return nil, fmt.Errorf("jwt secret not configured")
		}
		stack.jwt = identity.NewJWTVerifier(cfg.Auth.JWTSecret, tokenIssuer)
		stack.verifier = stack.jwt
	}

	if cfg.Auth.GoogleClientID != "" {
		stack.google = identity.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	}
	return stack, nil
}
