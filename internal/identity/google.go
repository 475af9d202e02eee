package identity

import (
	"context"
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

const ProviderGoogle = "google"

// GoogleVerifier checks Google ID tokens issued to the configured client.
// Google accounts are namespaced so they never collide with other subjects.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: google sign-in is not configured", ErrInvalidToken)
	}

	verifier := googleAuthIDTokenVerifier.Verifier{}
	if err := verifier.VerifyIDToken(token, []string{v.clientID}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &Claims{
		Subject:  "google:" + claimSet.Sub,
		Email:    claimSet.Email,
		Name:     claimSet.Name,
		Provider: ProviderGoogle,
	}, nil
}
