package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/token/", m.Handler.Token)
}
