package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-user-accounts/internal/interface/middleware"
)

// UserModule wires the user resource routes.
// Public: CRUD under /users/, GET /users/filter/, GET /users/search
// Protected: GET /users/me
type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  middleware.TokenParser
}

func NewUserModule(h *handlers.UserHandler, tokens middleware.TokenParser) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("/", m.Handler.Create)
		users.GET("/", m.Handler.List)
		users.GET("/filter/", m.Handler.Filter)
		users.GET("/search", m.Handler.Search)
		users.GET("/me", middleware.BearerAuth(m.Tokens), m.Handler.Me)
		users.GET("/:id", m.Handler.Get)
		users.PUT("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
	}
}
