package health

import "sync/atomic"

// 就绪位，对应两个对外监听口
const (
	gatePanel uint32 = 1 << iota
	gateInjector
)

const gateAll = gatePanel | gateInjector

// Readiness 监听口就绪登记。两个口都起监听后 /readyz 才放行。
type Readiness struct {
	gates atomic.Uint32
}

// New 创建就绪登记器
func New() *Readiness { return &Readiness{} }

// SetPanelReady 标记面板监听口就绪与否
func (r *Readiness) SetPanelReady(v bool) { r.set(gatePanel, v) }

// SetInjectorReady 标记注入监听口就绪与否
func (r *Readiness) SetInjectorReady(v bool) { r.set(gateInjector, v) }

// Ready 全部监听口均已就绪
func (r *Readiness) Ready() bool { return r.gates.Load() == gateAll }

func (r *Readiness) set(bit uint32, v bool) {
	for {
		old := r.gates.Load()
		next := old | bit
		if !v {
			next = old &^ bit
		}
		if r.gates.CompareAndSwap(old, next) {
			return
		}
	}
}
