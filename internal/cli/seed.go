package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-portal/internal/config"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates the bootstrap admin and teacher accounts. With the jwt
// provider it also prints a bearer token for each.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin and teacher accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			repo, err := openRepository(cfg, validator.New(), utils.ToSlogLogger(logger))
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Migrate(cmd.Context()); err != nil {
				return err
			}
			auth, err := newAuthStack(cfg, utils.ToSlogLogger(logger))
			if err != nil {
				return err
			}

			for _, account := range seedAccounts(cfg.Seed) {
				user, created, err := ensureUser(cmd.Context(), repo.User(), account)
				if err != nil {
					return err
				}
				logger.Info("Seed account ready", "email", user.Email, "role", user.Role, "created", created)
				if err := printToken(cmd, auth, user, cfg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewTokenCmd issues a bearer token for an existing account. Only the jwt
// provider can sign tokens locally.
func NewTokenCmd(configPath *string) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			repo, err := openRepository(cfg, validator.New(), utils.ToSlogLogger(logger))
			if err != nil {
				return err
			}
			defer repo.Close()

			auth, err := newAuthStack(cfg, utils.ToSlogLogger(logger))
			if err != nil {
				return err
			}
			if auth.jwt == nil {
				return fmt.Errorf("auth provider %q does not issue local tokens", cfg.Auth.Provider)
			}

			user, err := repo.User().GetByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return fmt.Errorf("look up %s: %w", email, err)
			}
			return printToken(cmd, auth, user, cfg)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func seedAccounts(seed config.SeedConfig) []*models.User {
	var accounts []*models.User
	if seed.AdminEmail != "" {
		accounts = append(accounts, &models.User{Email: seed.AdminEmail, Name: seed.AdminName, Role: models.RoleAdmin})
	}
	if seed.TeacherEmail != "" {
		accounts = append(accounts, &models.User{Email: seed.TeacherEmail, Name: seed.TeacherName, Role: models.RoleTeacher})
	}
	return accounts
}

// ensureUser returns the stored account for the email, creating it first if needed.
func ensureUser(ctx context.Context, users repositories.UserRepository, account *models.User) (*models.User, bool, error) {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))

	existing, err := users.GetByEmail(ctx, account.Email)
	switch {
	case err == nil:
		return existing, false, nil
	case !repositories.IsNotFoundError(err):
		return nil, false, fmt.Errorf("look up %s: %w", account.Email, err)
	}

	account.ID = uuid.NewString()
	account.ProfileComplete = true
	if err := users.Create(ctx, account); err != nil {
		return nil, false, fmt.Errorf("create %s: %w", account.Email, err)
	}
	return account, true, nil
}

func printToken(cmd *cobra.Command, auth *authStack, user *models.User, cfg *config.Config) error {
	if auth.jwt == nil {
		return nil
	}
	token, err := auth.jwt.IssueToken(user, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", user.Role, user.Email, token)
	return nil
}
