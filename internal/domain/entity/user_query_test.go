package entity

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
)

func TestParseSortField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    SortField
		wantErr bool
	}{
		{in: "", want: SortByID},
		{in: "id", want: SortByID},
		{in: "username", want: SortByUsername},
		{in: "email", want: SortByEmail},
		{in: "password", wantErr: true},
		{in: "id; DROP TABLE users", wantErr: true},
		{in: "Username", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSortField(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, apperror.ErrValidation)
				assert.Equal(t, "sort_by", apperror.FieldOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]SortOrder{"": OrderAsc, "asc": OrderAsc, "DESC": OrderDesc, " desc ": OrderDesc} {
		got, err := ParseSortOrder(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSortOrder("sideways")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUserFilterMatchesAndSorts(t *testing.T) {
	t.Parallel()

	users := []User{
		{ID: 1, Username: "carol", Email: "c@example.com"},
		{ID: 2, Username: "alice", Email: "z@example.com"},
		{ID: 3, Username: "bob", Email: "a@example.com"},
	}

	name := "bob"
	assert.True(t, UserFilter{Username: &name}.Matches(users[2]))
	assert.False(t, UserFilter{Username: &name}.Matches(users[0]))

	f := UserFilter{SortBy: SortByUsername, Order: OrderDesc}
	sort.Slice(users, func(i, j int) bool { return f.Less(users[i], users[j]) })
	assert.Equal(t, []int64{1, 3, 2}, []int64{users[0].ID, users[1].ID, users[2].ID})

	f = UserFilter{SortBy: SortByEmail, Order: OrderAsc}
	sort.Slice(users, func(i, j int) bool { return f.Less(users[i], users[j]) })
	assert.Equal(t, []int64{3, 1, 2}, []int64{users[0].ID, users[1].ID, users[2].ID})
}

func TestUserApplyPatch(t *testing.T) {
	t.Parallel()

	u := User{ID: 7, Username: "alice", Email: "alice@example.com", Password: "hash"}
	email := "new@example.com"
	got := u.Apply(UserPatch{Email: &email})

	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.Password)
	assert.Equal(t, int64(7), got.ID)
	assert.True(t, UserPatch{}.Empty())
}
