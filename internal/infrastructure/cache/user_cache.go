// Package cache keeps a short-lived copy of user records in Redis.
// Password hashes are never written to the cache.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

const DefaultTTL = 5 * time.Minute

type cachedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UserCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewUserCache(rdb redis.Cmdable, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserCache{rdb: rdb, ttl: ttl}
}

func userKey(id int64) string {
	return "user:record:" + strconv.FormatInt(id, 10)
}

// Get returns the cached user, with an empty Password, and whether it was found.
func (c *UserCache) Get(ctx context.Context, id int64) (*entity.User, bool, error) {
	var cu cachedUser
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, userKey(id), &cu)
	if err != nil || !ok {
		return nil, false, err
	}
	return &entity.User{ID: cu.ID, Username: cu.Username, Email: cu.Email}, true, nil
}

func (c *UserCache) Set(ctx context.Context, u *entity.User) error {
	return helpers.RedisSetJSON(ctx, c.rdb, userKey(u.ID), cachedUser{ID: u.ID, Username: u.Username, Email: u.Email}, c.ttl)
}

func (c *UserCache) Delete(ctx context.Context, id int64) error {
	return helpers.RedisDel(ctx, c.rdb, userKey(id))
}
