package helpers

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
)

// PasswordHasher hashes and verifies passwords with bcrypt.
// At most `concurrency` hash operations run at once so a burst of sign-ups
// cannot starve the rest of the process of CPU.
type PasswordHasher struct {
	cost  int
	sem   *semaphore.Weighted
	dummy []byte
}

func NewPasswordHasher(cost, concurrency int) (*PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range [%d,%d]", apperror.ErrConfiguration, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), cost)
	if err != nil {
		return nil, err
	}
	return &PasswordHasher{cost: cost, sem: semaphore.NewWeighted(int64(concurrency)), dummy: dummy}, nil
}

// Hash returns a salted bcrypt hash of plain. It waits for a free hashing
// slot and gives up when ctx is done.
func (h *PasswordHasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.WithField(apperror.ErrValidation, "password", "password must be at most 72 bytes")
		}
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A malformed hash yields false.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	_ = h.sem.Acquire(context.Background(), 1)
	defer h.sem.Release(1)
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Dummy burns one comparison so that a lookup miss takes as long as a
// wrong password.
func (h *PasswordHasher) Dummy(plain string) {
	_ = h.Verify(plain, string(h.dummy))
}
