package token

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const DefaultTTL = 2 * time.Minute

var validMethods = []string{jwt.SigningMethodHS256.Alg()}

// Validator checks media tokens. A token is bound to exactly one
// derivative key through its audience claim.
type Validator struct {
	secret []byte
	logger *zap.Logger
}

func NewValidator(secret string, logger *zap.Logger) *Validator {
	return &Validator{
		secret: []byte(secret),
		logger: logger,
	}
}

// Verify reports whether raw is a valid HS256 token for audience.
// Failures are logged, never returned.
func (v *Validator) Verify(ctx context.Context, raw, audience string) bool {
	if raw == "" || len(v.secret) == 0 {
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	_, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods(validMethods),
		jwt.WithAudience(audience),
	)
	if err != nil {
		v.logger.Debug("Token verification failed",
			zap.String("audience", audience),
			zap.Error(err))
		return false
	}

	return true
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a short-lived token scoped to audience.
func (i *Issuer) Issue(audience string) (string, error) {
	if len(i.secret) == 0 {
		return "", fmt.Errorf("empty signing secret")
	}

	now := i.now()
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// SignedURL builds the request URL handed to clients for one derivative.
func SignedURL(base, key, size, token string, noCache bool) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}

	q := u.Query()
	q.Set("token", token)
	q.Set("key", key)
	if size != "" {
		q.Set("size", size)
	}
	if noCache {
		q.Set("no_cache", "true")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
