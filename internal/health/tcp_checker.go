package health

import (
	"context"
	"fmt"

	"github.com/taoyao-code/visonic-proxy/internal/tcpserver"
)

// TCPChecker 按连接占用评估一个 TCP 监听器的压力，面板口与注入口各挂一个
type TCPChecker struct {
	name   string
	server *tcpserver.Server
}

// NewTCPChecker 创建监听器检查项
func NewTCPChecker(name string, server *tcpserver.Server) *TCPChecker {
	return &TCPChecker{name: name, server: server}
}

// Name 返回检查项名称
func (c *TCPChecker) Name() string { return c.name }

// Check 读取连接统计并按占用率分级
func (c *TCPChecker) Check(ctx context.Context) CheckResult {
	active := c.server.ActiveConnections()
	limit := c.server.MaxConnections()

	if limit <= 0 {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "no connection limit",
			Details: map[string]any{"conns_active": active},
		}
	}

	busy := float64(active) / float64(limit)
	res := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]any{
			"conns_active":   active,
			"conns_max":      limit,
			"conns_busy":     fmt.Sprintf("%.1f%%", busy*100),
			"rejected_total": c.server.Limiter().Stats().RejectedTotal,
		},
	}
	switch {
	case busy > 0.95:
		res.Status, res.Message = StatusUnhealthy, "connection slots exhausted"
	case busy > 0.8:
		res.Status, res.Message = StatusDegraded, "connection slots running low"
	}
	return res
}
