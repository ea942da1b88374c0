package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
)

func TestIssuerAndVerifierRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", "unionhub", time.Hour)
	verifier := NewJWTVerifier("test-secret", "unionhub")

	token, err := issuer.Issue(notification.Identity{UserID: "user-123", Email: "u@example.com", Role: RoleAdmin, Name: "Ruth"})
	require.NoError(t, err)

	identity, err := verifier.Verify(context.Background(), notification.Credentials{Token: token, UserID: "spoofed"})
	require.NoError(t, err)
	assert.Equal(t, notification.Identity{UserID: "user-123", Email: "u@example.com", Role: RoleAdmin, Name: "Ruth"}, identity)
}

func TestJWTVerifierRejects(t *testing.T) {
	verifier := NewJWTVerifier("test-secret", "unionhub")

	expired := NewIssuer("test-secret", "unionhub", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expired.Issue(notification.Identity{UserID: "u1"})
	require.NoError(t, err)

	wrongSecret, err := NewIssuer("other-secret", "unionhub", time.Hour).Issue(notification.Identity{UserID: "u1"})
	require.NoError(t, err)

	wrongIssuer, err := NewIssuer("test-secret", "elsewhere", time.Hour).Issue(notification.Identity{UserID: "u1"})
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "unionhub"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "unionhub"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-token", ErrInvalidToken},
		{"expired", expiredToken, ErrInvalidToken},
		{"wrong secret", wrongSecret, ErrInvalidToken},
		{"wrong issuer", wrongIssuer, ErrInvalidToken},
		{"wrong algorithm", wrongAlg, ErrInvalidToken},
		{"no subject", noSubject, ErrMissingSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), notification.Credentials{Token: tt.token})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTrustingVerifier(t *testing.T) {
	v := TrustingVerifier{}

	identity, err := v.Verify(context.Background(), notification.Credentials{UserID: "u1", Email: "a@b.co", Role: "member"})
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "member", identity.Role)

	_, err = v.Verify(context.Background(), notification.Credentials{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestIssuerRequiresSubject(t *testing.T) {
	_, err := NewIssuer("s", "", time.Hour).Issue(notification.Identity{})
	assert.ErrorIs(t, err, ErrMissingSubject)
}
