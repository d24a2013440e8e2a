package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
)

const uniqueViolation = "23505"

// sortColumns maps allowlisted sort fields to SQL identifiers. Column names
// in ORDER BY never come from anywhere else.
var sortColumns = map[entity.SortField]string{
	entity.SortByID:       "id",
	entity.SortByUsername: "username",
	entity.SortByEmail:    "email",
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Username, u.Email, u.Password)

	if err := row.Scan(&u.ID); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, password
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, password
		FROM users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, email, password
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return collectUsers(rows)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, password = $3
		WHERE id = $4
	`, u.Username, u.Email, u.Password, u.ID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return apperror.New(apperror.ErrNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		DELETE FROM users
		WHERE id = $1
		RETURNING id, username, email, password
	`, id)
	return scanUser(row)
}

func (r *UserRepository) Filter(ctx context.Context, f entity.UserFilter) ([]entity.User, error) {
	query, args, err := buildFilterQuery(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return collectUsers(rows)
}

func buildFilterQuery(f entity.UserFilter) (string, []any, error) {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		return "", nil, apperror.WithField(apperror.ErrValidation, "sort_by", "unsupported sort field")
	}
	dir := "ASC"
	if f.Order == entity.OrderDesc {
		dir = "DESC"
	}

	var (
		where []string
		args  []any
	)
	if f.Username != nil {
		args = append(args, *f.Username)
		where = append(where, fmt.Sprintf("username = $%d", len(args)))
	}
	if f.Email != nil {
		args = append(args, *f.Email)
		where = append(where, fmt.Sprintf("email = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT id, username, email, password FROM users")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(col)
	b.WriteString(" ")
	b.WriteString(dir)
	if col != "id" {
		b.WriteString(", id ")
		b.WriteString(dir)
	}
	return b.String(), args, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]entity.User, error) {
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.User, error) {
		var u entity.User
		err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password)
		return u, err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.New(apperror.ErrNotFound, "user not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field := "username"
		if strings.Contains(pgErr.ConstraintName, "email") {
			field = "email"
		}
		return apperror.WithField(apperror.ErrConflict, field, field+" already exists")
	}
	return fmt.Errorf("db error: %w", err)
}

var _ repository.UserRepository = (*UserRepository)(nil)
