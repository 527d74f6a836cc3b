package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes 注册 v1 API 路由
func RegisterRoutes(r *gin.Engine, h *Handler, logger *zap.Logger) {
	if r == nil || h == nil {
		return
	}

	v1 := r.Group("/api/v1")
	v1.POST("/decode", h.Decode)
	v1.GET("/sessions", h.Sessions)
	v1.POST("/inject", h.Inject)
	v1.GET("/settings", h.Settings)

	logger.Info("api routes registered", zap.Int("endpoints", 4))
}
