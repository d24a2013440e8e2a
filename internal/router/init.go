package router

import (
	"github.com/oksasatya/go-user-accounts/internal/container"
	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-user-accounts/internal/router/modules"
)

// InitModules builds the handlers from the container and registers every
// feature module with the registry.
func InitModules(r *Registry, c *container.Container) {
	users := handlers.NewUserHandler(c.Service, c.Logger)
	auth := handlers.NewAuthHandler(c.Service, c.Logger)

	var db handlers.Pinger
	if c.Pool != nil {
		db = c.Pool
	}
	health := handlers.NewHealthHandler(db, c.Logger)

	r.Add(modules.NewUserModule(users, c.Tokens))
	r.Add(modules.NewAuthModule(auth))
	r.Add(modules.NewDebugModule(health, c.Config.DebugMetricsEnabled))
}
