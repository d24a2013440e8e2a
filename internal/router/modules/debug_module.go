package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-user-accounts/internal/interface/http"
)

type DebugModule struct {
	Health  *handlers.HealthHandler
	Metrics bool
}

func NewDebugModule(h *handlers.HealthHandler, metrics bool) *DebugModule {
	return &DebugModule{Health: h, Metrics: metrics}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.Health.Health)
	if m.Metrics {
		rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	}
}
