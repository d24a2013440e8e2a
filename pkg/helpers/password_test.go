package helpers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
)

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	ctx := context.Background()

	for _, p := range []string{"password123", "", "ünïcødé-päss", strings.Repeat("x", 72)} {
		hash, err := h.Hash(ctx, p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, h.Verify(p, hash), "verify(%q, hash(%q))", p, p)
		assert.False(t, h.Verify(p+"!", hash))
	}
}

func TestPasswordHasher_SaltVaries(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	a, err := h.Hash(context.Background(), "same")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	assert.False(t, h.Verify("password", ""))
	assert.False(t, h.Verify("password", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("password", "$2a$10$short"))
}

func TestPasswordHasher_TooLong(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	_, err := h.Hash(context.Background(), strings.Repeat("x", 73))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestPasswordHasher_HonoursContextWhileWaiting(t *testing.T) {
	t.Parallel()

	h, err := NewPasswordHasher(bcrypt.MinCost, 1)
	require.NoError(t, err)
	// occupy the only slot
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = h.Hash(ctx, "password")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewPasswordHasher_RejectsBadCost(t *testing.T) {
	t.Parallel()

	_, err := NewPasswordHasher(99, 1)
	assert.ErrorIs(t, err, apperror.ErrConfiguration)
}
