package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
)

var (
	ErrMissingToken   = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("missing user id")
)

// RoleAdmin is allowed to call the administrative routes
const RoleAdmin = "admin"

// Verifier turns authenticate credentials into a verified identity
type Verifier interface {
	Verify(ctx context.Context, creds notification.Credentials) (notification.Identity, error)
}

// Claims is the token body shared by Issuer and JWTVerifier
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Identity converts verified claims to a connection identity
func (c *Claims) Identity() notification.Identity {
	return notification.Identity{
		UserID: c.Subject,
		Name:   c.Name,
		Email:  c.Email,
		Role:   c.Role,
	}
}

// JWTVerifier accepts HS256 tokens signed with a shared secret
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier returns a verifier for tokens signed with secret. A non-empty
// issuer must match the iss claim.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify ignores the identity fields in creds and trusts only the token
func (v *JWTVerifier) Verify(_ context.Context, creds notification.Credentials) (notification.Identity, error) {
	claims, err := v.ParseToken(creds.Token)
	if err != nil {
		return notification.Identity{}, err
	}
	return claims.Identity(), nil
}

// ParseToken validates a raw token string and returns its claims
func (v *JWTVerifier) ParseToken(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// TrustingVerifier accepts the identity the client sends. Use it only when no
// signing secret is configured.
type TrustingVerifier struct{}

// Verify returns the identity carried in creds, requiring only a user id
func (TrustingVerifier) Verify(_ context.Context, creds notification.Credentials) (notification.Identity, error) {
	if strings.TrimSpace(creds.UserID) == "" {
		return notification.Identity{}, ErrMissingSubject
	}
	return notification.Identity{
		UserID: creds.UserID,
		Name:   creds.Name,
		Email:  creds.Email,
		Role:   creds.Role,
	}, nil
}

// Issuer signs HS256 tokens
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an issuer whose tokens expire after ttl
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for the given identity
func (i *Issuer) Issue(identity notification.Identity) (string, error) {
	if identity.UserID == "" {
		return "", ErrMissingSubject
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identity.UserID,
			Issuer:   i.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Email: identity.Email,
		Role:  identity.Role,
		Name:  identity.Name,
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
