package health

import (
	"context"
	"fmt"

	"github.com/taoyao-code/visonic-proxy/internal/events"
)

// RedisChecker 检查 Redis 事件通道：能 ping 通且连接池未吃满
type RedisChecker struct {
	sink *events.RedisSink
}

// NewRedisChecker 创建 Redis 检查项
func NewRedisChecker(sink *events.RedisSink) *RedisChecker {
	return &RedisChecker{sink: sink}
}

// Name 返回检查项名称
func (c *RedisChecker) Name() string { return "redis" }

// Check 先 ping 再看连接池水位
func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	if err := c.sink.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	pool := c.sink.Stats()
	res := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]any{
			"pool_total":    pool.TotalConns,
			"pool_idle":     pool.IdleConns,
			"pool_stale":    pool.StaleConns,
			"pool_hits":     pool.Hits,
			"pool_misses":   pool.Misses,
			"pool_timeouts": pool.Timeouts,
		},
	}
	if pool.TotalConns > 0 {
		busy := float64(pool.TotalConns-pool.IdleConns) / float64(pool.TotalConns)
		res.Details["pool_busy"] = fmt.Sprintf("%.1f%%", busy*100)
		if busy > 0.9 {
			res.Status = StatusDegraded
			res.Message = "connection pool near limit"
		}
	}
	return res
}
