// Package container builds the shared components of a process from Config
// and hands them to the router, the worker and the seeder.
package container

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/config"
	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	repo "github.com/oksasatya/go-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-user-accounts/internal/infrastructure/cache"
	"github.com/oksasatya/go-user-accounts/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-user-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-accounts/internal/infrastructure/search"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

// Container holds the constructed components. Optional backends (Redis,
// Rabbit, ES) are nil when their configuration is empty.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Rabbit *helpers.RabbitPublisher
	ES     *elasticsearch.Client

	Tx        repo.Transactor
	Tokens    *helpers.TokenIssuer
	Hasher    *helpers.PasswordHasher
	UserIndex *search.UserIndex
	Service   *userapp.Service
}

// Build connects every configured backend. On error everything opened so far
// is closed again.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (c *Container, err error) {
	c = &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
			c = nil
		}
	}()

	c.Tokens, err = helpers.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		return c, err
	}
	c.Hasher, err = helpers.NewPasswordHasher(cfg.BcryptCost, cfg.HashConcurrency)
	if err != nil {
		return c, err
	}

	switch cfg.DBDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory user store; data is lost on exit")
		c.Tx = memory.NewStore()
	default:
		dsn := cfg.PostgresDSN()
		c.Pool, err = pginfra.NewPool(ctx, dsn, pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return c, fmt.Errorf("postgres: %w", err)
		}
		if err = pginfra.EnsureSchema(dsn, logger); err != nil {
			return c, err
		}
		c.Tx = pginfra.NewTxManager(c.Pool)
	}

	c.Service = userapp.NewService(c.Tx, c.Hasher, c.Tokens, logger)

	if cfg.RedisAddr != "" {
		c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if pingErr := c.Redis.Ping(ctx).Err(); pingErr != nil {
			logger.WithError(pingErr).Warn("redis unreachable; user cache disabled")
			_ = c.Redis.Close()
			c.Redis = nil
		} else {
			c.Service.Cache = cache.NewUserCache(c.Redis, cfg.UserCacheTTL)
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, pubErr := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
		if pubErr != nil {
			logger.WithError(pubErr).Warn("rabbitmq unavailable; user events disabled")
		} else {
			c.Rabbit = pub
			c.Service.Events = pub
		}
	}

	c.ES, err = helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		return c, fmt.Errorf("elasticsearch: %w", err)
	}
	if c.ES != nil {
		c.UserIndex = search.NewUserIndex(c.ES, cfg.ESUsersIndex)
		c.Service.Search = c.UserIndex
	}

	return c, nil
}

// Close releases every connection held by the container.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Rabbit != nil {
		c.Rabbit.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
