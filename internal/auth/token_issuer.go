// Package auth issues and checks the bearer tokens that guard the notes API.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL = 24 * time.Hour
	DefaultIssuer   = "cleannotes-auth"
	DefaultAudience = "cleannotes-api"
	tokenUseAccess  = "access"
)

var (
	errMissingSigningSecret = errors.New("auth: signing secret must be provided")
	errMissingSubjectClaim  = errors.New("auth: subject claim must be provided")
	errWrongTokenUse        = errors.New("auth: token is not an access token")
)

// TokenIssuerConfig configures the API access token issuer.
type TokenIssuerConfig struct {
	SigningSecret []byte
	Issuer        string
	Audience      string
	TokenTTL      time.Duration
	Clock         func() time.Time
}

type accessClaims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 access tokens for a single owner and validates them on the way back in.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	clock    func() time.Time
	parser   *jwt.Parser
}

func NewTokenIssuer(cfg TokenIssuerConfig) (*TokenIssuer, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, errMissingSigningSecret
	}
	issuer := &TokenIssuer{
		secret:   append([]byte(nil), cfg.SigningSecret...),
		issuer:   valueOrDefault(cfg.Issuer, DefaultIssuer),
		audience: valueOrDefault(cfg.Audience, DefaultAudience),
		ttl:      cfg.TokenTTL,
		clock:    cfg.Clock,
	}
	if issuer.ttl <= 0 {
		issuer.ttl = defaultTokenTTL
	}
	if issuer.clock == nil {
		issuer.clock = time.Now
	}
	issuer.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(issuer.audience),
		jwt.WithIssuer(issuer.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(issuer.clock),
	)
	return issuer, nil
}

// IssueAccessToken returns a signed token for subject and its lifetime in seconds.
func (i *TokenIssuer) IssueAccessToken(_ context.Context, subject string) (string, int64, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", 0, errMissingSubjectClaim
	}

	issuedAt := i.clock().UTC()
	claims := accessClaims{
		TokenUse: tokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(i.ttl / time.Second), nil
}

// ValidateToken checks signature, issuer, audience and expiry, and returns the subject.
// Expiry failures wrap jwt.ErrTokenExpired.
func (i *TokenIssuer) ValidateToken(tokenString string) (string, error) {
	claims := &accessClaims{}
	if _, err := i.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}); err != nil {
		return "", err
	}
	if claims.TokenUse != tokenUseAccess {
		return "", errWrongTokenUse
	}
	if claims.Subject == "" {
		return "", errMissingSubjectClaim
	}
	return claims.Subject, nil
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
