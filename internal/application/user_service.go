package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	repo "github.com/oksasatya/go-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-user-accounts/internal/infrastructure/search"
)

const (
	DefaultSearchSize = 10
	MaxSearchSize     = 50
)

// ErrInvalidCredentials is returned for every failed login, whatever the cause.
var ErrInvalidCredentials = apperror.New(apperror.ErrAuthentication, "incorrect username or password")

type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(plain, hash string) bool
	Dummy(plain string)
}

type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
}

type UserCache interface {
	Get(ctx context.Context, id int64) (*entity.User, bool, error)
	Set(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id int64) error
}

type UserSearcher interface {
	Search(ctx context.Context, q string, size int) ([]search.UserDocument, error)
}

// Service implements the user lifecycle and login flow. Cache, Events and
// Search are optional and may be left nil.
type Service struct {
	Tx     repo.Transactor
	Hasher PasswordHasher
	Tokens TokenIssuer
	Logger *logrus.Logger

	Cache  UserCache
	Events JSONPublisher
	Search UserSearcher
}

func NewService(tx repo.Transactor, hasher PasswordHasher, tokens TokenIssuer, logger *logrus.Logger) *Service {
	return &Service{Tx: tx, Hasher: hasher, Tokens: tokens, Logger: logger}
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

type FilterInput struct {
	Username string
	Email    string
	SortBy   string
	Order    string
}

type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apperror.WithField(apperror.ErrValidation, field, field+" is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := errors.Join(
		requireText("username", in.Username),
		requireText("email", in.Email),
		requireText("password", in.Password),
	); err != nil {
		return nil, err
	}

	// hash before opening the unit of work so no transaction waits on bcrypt
	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.Tx.WithinTx(ctx, func(r repo.UserRepository) error {
		return r.Create(ctx, u)
	}); err != nil {
		return nil, err
	}

	metrics.Add(metricCreated, 1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user created")
	s.publish(ctx, EventUserCreated, u)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if id <= 0 {
		return nil, apperror.New(apperror.ErrNotFound, "user not found")
	}
	if s.Cache != nil {
		u, ok, err := s.Cache.Get(ctx, id)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("user cache read failed")
		}
		if ok {
			metrics.Add(metricCacheHit, 1)
			return u, nil
		}
		metrics.Add(metricCacheMiss, 1)
	}

	var u *entity.User
	if err := s.Tx.WithinTx(ctx, func(r repo.UserRepository) error {
		var err error
		u, err = r.GetByID(ctx, id)
		return err
	}); err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("user cache write failed")
		}
	}
	return u, nil
}

// List returns users in id order. limit is used as given.
func (s *Service) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	if skip < 0 {
		return nil, apperror.WithField(apperror.ErrValidation, "page", "page must not be negative")
	}
	if limit < 0 {
		return nil, apperror.WithField(apperror.ErrValidation, "limit", "limit must not be negative")
	}

	var users []entity.User
	err := s.Tx.WithinTx(ctx, func(r repo.UserRepository) error {
		var err error
		users, err = r.List(ctx, skip, limit)
		return err
	})
	return users, err
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateUserInput) (*entity.User, error) {
	var errs []error
	if in.Username != nil {
		errs = append(errs, requireText("username", *in.Username))
	}
	if in.Email != nil {
		errs = append(errs, requireText("email", *in.Email))
	}
	if in.Password != nil {
		errs = append(errs, requireText("password", *in.Password))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	patch := entity.UserPatch{Username: in.Username, Email: in.Email}
	if in.Password != nil {
		hash, err := s.Hasher.Hash(ctx, *in.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}

	var updated entity.User
	if err := s.Tx.WithinTx(ctx, func(r repo.UserRepository) error {
		cur, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated = cur.Apply(patch)
		if patch.Empty() {
			return nil
		}
		return r.Update(ctx, &updated)
	}); err != nil {
		return nil, err
	}

	if patch.Empty() {
		return &updated, nil
	}
	metrics.Add(metricUpdated, 1)
	s.forget(ctx, id)
	s.Logger.WithField("user_id", id).Info("user updated")
	s.publish(ctx, EventUserUpdated, &updated)
	return &updated, nil
}

// Delete removes the user and returns the record as it was before removal.
func (s *Service) Delete(ctx context.Context, id int64) (*entity.User, error) {
	var deleted *entity.User
	if err := s.Tx.WithinTx(ctx, func(r repo.UserRepository) error {
		var err error
		deleted, err = r.Delete(ctx, id)
		return err
	}); err != nil {
		return nil, err
	}

	metrics.Add(metricDeleted, 1)
	s.forget(ctx, id)
	s.Logger.WithField("user_id", id).Info("user deleted")
	s.publish(ctx, EventUserDeleted, deleted)
	return deleted, nil
}

// Filter validates the sort options before any storage access. Empty
// username or email means "do not constrain".
func (s *Service) Filter(ctx context.Context, in FilterInput) ([]entity.User, error) {
	sortBy, err := entity.ParseSortField(in.SortBy)
	if err != nil {
		return nil, err
	}
	order, err := entity.ParseSortOrder(in.Order)
	if err != nil {
		return nil, err
	}
	f := entity.UserFilter{SortBy: sortBy, Order: order}
	if v := strings.TrimSpace(in.Username); v != "" {
		f.Username = &v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		f.Email = &v
	}

	var users []entity.User
	err = s.Tx.WithinTx(ctx, func(r repo.UserRepository) error {
		var err error
		users, err = r.Filter(ctx, f)
		return err
	})
	return users, err
}

// Authenticate checks the credentials and issues a bearer token for the
// username. Unknown users and wrong passwords fail identically.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*TokenResult, error) {
	var u *entity.User
	err := s.Tx.WithinTx(ctx, func(r repo.UserRepository) error {
		var err error
		u, err = r.GetByUsername(ctx, username)
		return err
	})
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		s.Hasher.Dummy(password)
		return nil, s.loginFailed(username)
	case err != nil:
		return nil, err
	}

	if !s.Hasher.Verify(password, u.Password) {
		return nil, s.loginFailed(username)
	}

	token, exp, err := s.Tokens.Issue(u.Username)
	if err != nil {
		return nil, err
	}
	metrics.Add(metricLoginOK, 1)
	return &TokenResult{AccessToken: token, TokenType: "bearer", ExpiresAt: exp}, nil
}

func (s *Service) loginFailed(username string) error {
	metrics.Add(metricLoginFailed, 1)
	s.Logger.WithField("username", username).Warn("login failed")
	return ErrInvalidCredentials
}

// GetByUsername resolves the subject of a verified token.
func (s *Service) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u *entity.User
	err := s.Tx.WithinTx(ctx, func(r repo.UserRepository) error {
		var err error
		u, err = r.GetByUsername(ctx, username)
		return err
	})
	return u, err
}

// SearchUsers queries the search projection. Without a configured search
// backend it returns no results.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]search.UserDocument, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.WithField(apperror.ErrValidation, "q", "q is required")
	}
	if size <= 0 || size > MaxSearchSize {
		size = DefaultSearchSize
	}
	if s.Search == nil {
		return []search.UserDocument{}, nil
	}
	return s.Search.Search(ctx, q, size)
}

func (s *Service) forget(ctx context.Context, id int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, id); err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("user cache invalidation failed")
	}
}
