package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-accounts/config"
	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/internal/container"
	"github.com/oksasatya/go-user-accounts/internal/domain/apperror"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

func main() {
	_ = godotenv.Load()

	username := flag.String("username", "demoUser", "username of the seeded account")
	email := flag.String("email", "demo@example.com", "email of the seeded account")
	password := flag.String("password", "password123", "plaintext password of the seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize dependencies")
	}
	defer c.Close()

	u, err := c.Service.Create(ctx, userapp.CreateUserInput{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	switch {
	case errors.Is(err, apperror.ErrConflict):
		fmt.Printf("user already present (%s): username=%s email=%s\n", apperror.FieldOf(err), *username, *email)
		return
	case err != nil:
		logger.WithError(err).Fatal("failed to seed user")
	}
	fmt.Printf("seeded user: id=%d username=%s email=%s password=%s\n", u.ID, u.Username, u.Email, *password)
}
