package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterHTTPRoutes 挂载健康检查路由。
// /health/live 只证明进程在响应；/health/ready 反映能否接流量；
// /health 输出逐项检查明细。
func RegisterHTTPRoutes(r *gin.Engine, agg *Aggregator) {
	r.GET("/health/live", func(c *gin.Context) {
		// 进程能执行到这里即视为存活
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})

	r.GET("/health/ready", func(c *gin.Context) {
		if !agg.Ready(c.Request.Context()) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ready": true})
	})

	r.GET("/health", func(c *gin.Context) {
		results := agg.CheckAll(c.Request.Context())
		overall := Overall(results)
		code := http.StatusOK
		if overall == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		// 降级仍返回 200，调用方看 status 字段区分
		c.JSON(code, Report{
			Status:    overall,
			Timestamp: time.Now(),
			Checks:    results,
		})
	})
}
