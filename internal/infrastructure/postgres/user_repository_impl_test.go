package postgres

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
)

func strPtr(s string) *string { return &s }

func TestBuildFilterQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   entity.UserFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "defaults",
			filter:  entity.UserFilter{SortBy: entity.SortByID, Order: entity.OrderAsc},
			wantSQL: "SELECT id, username, email, password FROM users ORDER BY id ASC",
		},
		{
			name:     "both filters desc by username",
			filter:   entity.UserFilter{Username: strPtr("alice"), Email: strPtr("a@example.com"), SortBy: entity.SortByUsername, Order: entity.OrderDesc},
			wantSQL:  "SELECT id, username, email, password FROM users WHERE username = $1 AND email = $2 ORDER BY username DESC, id DESC",
			wantArgs: []any{"alice", "a@example.com"},
		},
		{
			name:     "email only",
			filter:   entity.UserFilter{Email: strPtr("b@example.com"), SortBy: entity.SortByEmail, Order: entity.OrderAsc},
			wantSQL:  "SELECT id, username, email, password FROM users WHERE email = $1 ORDER BY email ASC, id ASC",
			wantArgs: []any{"b@example.com"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sql, args, err := buildFilterQuery(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildFilterQuery_RejectsUnknownSortField(t *testing.T) {
	t.Parallel()

	_, _, err := buildFilterQuery(entity.UserFilter{SortBy: entity.SortField("password")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

// newTestPool connects to TEST_DATABASE_URL and resets the users table.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, EnsureSchema(dsn, logger))

	pool, err := NewPool(context.Background(), dsn, PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), "TRUNCATE users RESTART IDENTITY")
	require.NoError(t, err)
	return pool
}

func TestUserRepository_Postgres(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	alice := &entity.User{Username: "alice", Email: "alice@example.com", Password: "h1"}
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotZero(t, alice.ID)

	err := repo.Create(ctx, &entity.User{Username: "alice", Email: "other@example.com", Password: "h2"})
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "username", apperror.FieldOf(err))

	err = repo.Create(ctx, &entity.User{Username: "alice2", Email: "alice@example.com", Password: "h2"})
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "email", apperror.FieldOf(err))

	for _, name := range []string{"bob", "carol", "dave", "erin"} {
		require.NoError(t, repo.Create(ctx, &entity.User{Username: name, Email: name + "@example.com", Password: "h"}))
	}

	page, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "alice", page[0].Username)
	assert.Equal(t, "bob", page[1].Username)

	got, err := repo.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	got.Email = "carol@new.example.com"
	require.NoError(t, repo.Update(ctx, got))

	filtered, err := repo.Filter(ctx, entity.UserFilter{Email: strPtr("carol@new.example.com"), SortBy: entity.SortByID, Order: entity.OrderAsc})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "carol", filtered[0].Username)

	sorted, err := repo.Filter(ctx, entity.UserFilter{SortBy: entity.SortByUsername, Order: entity.OrderDesc})
	require.NoError(t, err)
	require.Len(t, sorted, 5)
	assert.Equal(t, "erin", sorted[0].Username)

	deleted, err := repo.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.Username)

	_, err = repo.Delete(ctx, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = repo.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	tm := NewTxManager(pool)

	err := tm.WithinTx(ctx, func(repo repository.UserRepository) error {
		if err := repo.Create(ctx, &entity.User{Username: "ghost", Email: "ghost@example.com", Password: "h"}); err != nil {
			return err
		}
		return apperror.New(apperror.ErrValidation, "abort")
	})
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = NewUserRepository(pool).GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
