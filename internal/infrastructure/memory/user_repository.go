// Package memory is an in-process implementation of the user repository.
// Each unit of work runs against a private copy of the data that replaces the
// shared copy only on commit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
)

type state struct {
	users  map[int64]entity.User
	nextID int64
}

func (s *state) clone() *state {
	c := &state{users: make(map[int64]entity.User, len(s.users)), nextID: s.nextID}
	for id, u := range s.users {
		c.users[id] = u
	}
	return c
}

// Store is safe for concurrent use. Units of work are serialized.
type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: &state{users: map[int64]entity.User{}, nextID: 1}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(repo repository.UserRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&txRepo{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Create(ctx context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txRepo{st: s.st}).Create(ctx, u)
}

func (s *Store) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txRepo{st: s.st}).GetByID(ctx, id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txRepo{st: s.st}).GetByUsername(ctx, username)
}

func (s *Store) List(ctx context.Context, offset, limit int) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txRepo{st: s.st}).List(ctx, offset, limit)
}

func (s *Store) Update(ctx context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txRepo{st: s.st}).Update(ctx, u)
}

func (s *Store) Delete(ctx context.Context, id int64) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txRepo{st: s.st}).Delete(ctx, id)
}

func (s *Store) Filter(ctx context.Context, f entity.UserFilter) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txRepo{st: s.st}).Filter(ctx, f)
}

// txRepo works on a state without locking; the caller holds Store.mu.
type txRepo struct {
	st *state
}

func notFound() error { return apperror.New(apperror.ErrNotFound, "user not found") }

// checkUnique mirrors the UNIQUE constraints of the users table.
func (r *txRepo) checkUnique(u entity.User) error {
	for id, other := range r.st.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return apperror.WithField(apperror.ErrConflict, "username", "username already exists")
		}
		if other.Email == u.Email {
			return apperror.WithField(apperror.ErrConflict, "email", "email already exists")
		}
	}
	return nil
}

func (r *txRepo) Create(_ context.Context, u *entity.User) error {
	candidate := *u
	candidate.ID = 0
	if err := r.checkUnique(candidate); err != nil {
		return err
	}
	candidate.ID = r.st.nextID
	r.st.nextID++
	r.st.users[candidate.ID] = candidate
	u.ID = candidate.ID
	return nil
}

func (r *txRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, notFound()
	}
	return &u, nil
}

func (r *txRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.st.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, notFound()
}

func (r *txRepo) sorted(f entity.UserFilter) []entity.User {
	out := make([]entity.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		if f.Matches(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return f.Less(out[i], out[j]) })
	return out
}

func (r *txRepo) List(_ context.Context, offset, limit int) ([]entity.User, error) {
	all := r.sorted(entity.UserFilter{SortBy: entity.SortByID, Order: entity.OrderAsc})
	if offset >= len(all) || limit <= 0 {
		return []entity.User{}, nil
	}
	end := offset + limit
	if end > len(all) || end < offset {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *txRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.st.users[u.ID]; !ok {
		return notFound()
	}
	if err := r.checkUnique(*u); err != nil {
		return err
	}
	r.st.users[u.ID] = *u
	return nil
}

func (r *txRepo) Delete(_ context.Context, id int64) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, notFound()
	}
	delete(r.st.users, id)
	return &u, nil
}

func (r *txRepo) Filter(_ context.Context, f entity.UserFilter) ([]entity.User, error) {
	switch f.SortBy {
	case entity.SortByID, entity.SortByUsername, entity.SortByEmail:
	default:
		return nil, apperror.WithField(apperror.ErrValidation, "sort_by", "unsupported sort field")
	}
	return r.sorted(f), nil
}

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.Transactor     = (*Store)(nil)
)
