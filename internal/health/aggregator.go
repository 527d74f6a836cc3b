package health

import (
	"context"
	"sync"
	"time"
)

// 单项检查的时间上限，挂死的下游不能拖垮整个 /health
const defaultCheckTimeout = 3 * time.Second

// Aggregator 并发执行全部注册检查项并汇总整体状态
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
}

// NewAggregator 创建聚合器
func NewAggregator(checkers ...Checker) *Aggregator {
	return &Aggregator{checkers: checkers, timeout: defaultCheckTimeout}
}

// AddChecker 注册检查项
func (a *Aggregator) AddChecker(c Checker) {
	a.mu.Lock()
	a.checkers = append(a.checkers, c)
	a.mu.Unlock()
}

// CheckAll 并发执行全部检查，返回按检查项名称索引的结果。
// 所有检查共享一个时限，检查器须在 ctx 取消后尽快返回。
func (a *Aggregator) CheckAll(ctx context.Context) map[string]CheckResult {
	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]CheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			start := time.Now()
			r := c.Check(cctx)
			r.TookMS = float64(time.Since(start).Microseconds()) / 1000
			results[i] = r
		}(i, c)
	}
	wg.Wait()

	out := make(map[string]CheckResult, len(checkers))
	for i, c := range checkers {
		out[c.Name()] = results[i]
	}
	return out
}

// Overall 汇总整体状态：任一不健康则不健康，否则任一降级则降级
func Overall(results map[string]CheckResult) Status {
	overall := StatusHealthy
	for _, r := range results {
		overall = worse(overall, r.Status)
	}
	return overall
}

// Ready 就绪判定：降级仍视为就绪，只有不健康才摘流量
func (a *Aggregator) Ready(ctx context.Context) bool {
	return Overall(a.CheckAll(ctx)) != StatusUnhealthy
}

// Report /health 响应体
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}
