package entity

import "strings"

// User is the aggregate root for the user domain.
// Password only ever holds a bcrypt hash and is never serialized.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// UserPatch lists the fields of a partial update. Nil means "leave as is".
type UserPatch struct {
	Username *string
	Email    *string
	Password *string // already hashed by the time it reaches storage
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil
}

// Apply merges the present fields of p into a copy of u.
func (u User) Apply(p UserPatch) User {
	if p.Username != nil {
		u.Username = strings.TrimSpace(*p.Username)
	}
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	return u
}
