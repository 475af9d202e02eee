package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-portal/internal/config"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

const ProviderCasdoor = "casdoor"

func NewCasdoorClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// CasdoorVerifier validates tokens signed by the Casdoor instance.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(client *casdoorsdk.Client) *CasdoorVerifier {
	return &CasdoorVerifier{client: client}
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.Id
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	name := claims.DisplayName
	if name == "" {
		name = claims.Name
	}

	return &Claims{
		Subject:  subject,
		Email:    claims.Email,
		Name:     name,
		Provider: ProviderCasdoor,
	}, nil
}

// AccountProvisioner mirrors staff accounts created by an admin into the
// identity provider so the new user can sign in.
type AccountProvisioner interface {
	Provision(ctx context.Context, user *models.User, password string) error
	Deprovision(ctx context.Context, user *models.User) error
}

type CasdoorProvisioner struct {
	client       *casdoorsdk.Client
	organization string
	logger       *slog.Logger
}

func NewCasdoorProvisioner(client *casdoorsdk.Client, organization string, logger *slog.Logger) *CasdoorProvisioner {
	return &CasdoorProvisioner{client: client, organization: organization, logger: logger}
}

func (p *CasdoorProvisioner) Provision(ctx context.Context, user *models.User, password string) error {
	ok, err := p.client.AddUser(p.casdoorUser(user, password))
	if err != nil {
		return fmt.Errorf("failed to create casdoor account: %w", err)
	}
	if !ok {
		return fmt.Errorf("casdoor rejected account for %s", user.Email)
	}
	p.logger.Info("Casdoor account created", "user_id", user.ID, "role", user.Role)
	return nil
}

func (p *CasdoorProvisioner) Deprovision(ctx context.Context, user *models.User) error {
	if _, err := p.client.DeleteUser(p.casdoorUser(user, "")); err != nil {
		return fmt.Errorf("failed to delete casdoor account: %w", err)
	}
	p.logger.Info("Casdoor account deleted", "user_id", user.ID)
	return nil
}

// The local user ID doubles as the Casdoor id and username so the token
// subject maps straight back to the profile row.
func (p *CasdoorProvisioner) casdoorUser(user *models.User, password string) *casdoorsdk.User {
	return &casdoorsdk.User{
		Owner:       p.organization,
		Name:        user.ID,
		Id:          user.ID,
		Type:        "normal-user",
		Password:    password,
		DisplayName: user.Name,
		Email:       user.Email,
	}
}

// NoopProvisioner is used with the local JWT provider, where accounts only
// exist in the users table.
type NoopProvisioner struct{}

func (NoopProvisioner) Provision(ctx context.Context, user *models.User, password string) error {
	return nil
}

func (NoopProvisioner) Deprovision(ctx context.Context, user *models.User) error {
	return nil
}
