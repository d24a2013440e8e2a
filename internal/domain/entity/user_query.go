package entity

import (
	"strings"

	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
)

// SortField is a user column that results may be ordered by.
type SortField string

const (
	SortByID       SortField = "id"
	SortByUsername SortField = "username"
	SortByEmail    SortField = "email"
)

// sortable is the allowlist of orderable columns. Anything else is rejected
// before a query is built.
var sortable = map[SortField]struct{}{
	SortByID:       {},
	SortByUsername: {},
	SortByEmail:    {},
}

// ParseSortField validates s against the allowlist. Empty means id.
func ParseSortField(s string) (SortField, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortByID, nil
	}
	f := SortField(s)
	if _, ok := sortable[f]; !ok {
		return "", apperror.WithField(apperror.ErrValidation, "sort_by", "sort_by must be one of: id, username, email")
	}
	return f, nil
}

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder accepts asc or desc in any case. Empty means asc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return OrderAsc, nil
	case "desc":
		return OrderDesc, nil
	default:
		return "", apperror.WithField(apperror.ErrValidation, "order", "order must be asc or desc")
	}
}

// UserFilter narrows and orders a user listing. Nil filters do not constrain.
type UserFilter struct {
	Username *string
	Email    *string
	SortBy   SortField
	Order    SortOrder
}

// Matches reports whether u satisfies the equality filters of f.
func (f UserFilter) Matches(u User) bool {
	if f.Username != nil && u.Username != *f.Username {
		return false
	}
	if f.Email != nil && u.Email != *f.Email {
		return false
	}
	return true
}

// Less orders a before b by f.SortBy, ties broken by id.
func (f UserFilter) Less(a, b User) bool {
	var cmp int
	switch f.SortBy {
	case SortByUsername:
		cmp = strings.Compare(a.Username, b.Username)
	case SortByEmail:
		cmp = strings.Compare(a.Email, b.Email)
	}
	if cmp == 0 {
		switch {
		case a.ID < b.ID:
			cmp = -1
		case a.ID > b.ID:
			cmp = 1
		}
	}
	if f.Order == OrderDesc {
		return cmp > 0
	}
	return cmp < 0
}
