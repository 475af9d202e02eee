package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

const ProviderJWT = "jwt"

type tokenClaims struct {
	Email string          `json:"email,omitempty"`
	Name  string          `json:"name,omitempty"`
	Role  models.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier accepts HS256 tokens signed with a shared secret. It backs local
// development, the seed command and tests.
type JWTVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Claims{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Role:     claims.Role,
		Provider: ProviderJWT,
	}, nil
}

// IssueToken signs a token for user valid for ttl.
func (v *JWTVerifier) IssueToken(user *models.User, ttl time.Duration) (string, error) {
	now := v.now()
	claims := tokenClaims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
