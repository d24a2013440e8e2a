package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewTokenIssuer_Configuration(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("", time.Minute)
	assert.ErrorIs(t, err, apperror.ErrConfiguration)

	_, err = NewTokenIssuer("short", time.Minute)
	assert.ErrorIs(t, err, apperror.ErrConfiguration)

	ti, err := NewTokenIssuer(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultAccessTTL, ti.TTL())
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	t.Parallel()

	ti, err := NewTokenIssuer(testSecret, 30*time.Minute)
	require.NoError(t, err)

	tok, exp, err := ti.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 2*time.Second)

	claims, err := ti.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestTokenIssuer_DifferentInstantsDifferentTokens(t *testing.T) {
	t.Parallel()

	ti, err := NewTokenIssuer(testSecret, time.Minute)
	require.NoError(t, err)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ti.now = func() time.Time { return base }
	a, _, err := ti.Issue("alice")
	require.NoError(t, err)

	ti.now = func() time.Time { return base.Add(time.Second) }
	b, _, err := ti.Issue("alice")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenIssuer_ParseRejects(t *testing.T) {
	t.Parallel()

	ti, err := NewTokenIssuer(testSecret, time.Minute)
	require.NoError(t, err)
	other, err := NewTokenIssuer(strings.Repeat("z", 32), time.Minute)
	require.NoError(t, err)

	expired, _, err := ti.IssueWithTTL("alice", -time.Minute)
	require.NoError(t, err)
	foreign, _, err := other.Issue("alice")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"alg none":     none,
		"malformed":    "not.a.jwt",
		"empty":        "",
	} {
		_, err := ti.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
