package health

import "context"

// Status 组件健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"  // 仍可服务，容量或下游吃紧
	StatusUnhealthy Status = "unhealthy" // 无法服务
)

var statusRank = map[Status]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

// worse 返回两个状态中更差的一个
func worse(a, b Status) Status {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// CheckResult 单项检查结果。TookMS 由聚合器统一测量填充，检查器自身不计时。
type CheckResult struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	TookMS  float64        `json:"took_ms"`
}

// Checker 单个组件的健康检查
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// CheckFunc 以函数形式注册的检查项
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewCheckFunc 包装一个检查函数
func NewCheckFunc(name string, fn func(ctx context.Context) CheckResult) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name 返回检查项名称
func (c *CheckFunc) Name() string { return c.name }

// Check 执行检查
func (c *CheckFunc) Check(ctx context.Context) CheckResult { return c.fn(ctx) }
