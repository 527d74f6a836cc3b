package tcpserver

import "sync/atomic"

// ConnectionLimiter 并发连接数上限。满载时立即拒绝而不是排队：
// 面板侧有自己的重连退避，在 accept 循环里等名额只会拖住其他连接。
type ConnectionLimiter struct {
	sem      chan struct{} // nil 表示不限数量
	maxConn  int
	active   atomic.Int64
	rejected atomic.Int64
}

// NewConnectionLimiter 创建连接数限流器；maxConn <= 0 表示不限
func NewConnectionLimiter(maxConn int) *ConnectionLimiter {
	l := &ConnectionLimiter{maxConn: maxConn}
	if maxConn > 0 {
		l.sem = make(chan struct{}, maxConn)
	}
	return l
}

// TryAcquire 尝试占一个连接名额，满载时立即失败
func (l *ConnectionLimiter) TryAcquire() bool {
	if l.sem != nil {
		select {
		case l.sem <- struct{}{}:
		default:
			l.rejected.Add(1)
			return false
		}
	}
	l.active.Add(1)
	return true
}

// Release 归还名额，与成功的 TryAcquire 配对调用
func (l *ConnectionLimiter) Release() {
	if l.sem != nil {
		select {
		case <-l.sem:
		default:
			return
		}
	}
	l.active.Add(-1)
}

// Active 当前占用的名额数
func (l *ConnectionLimiter) Active() int {
	return int(l.active.Load())
}

// MaxConnections 名额上限；0 表示不限
func (l *ConnectionLimiter) MaxConnections() int { return l.maxConn }

// Stats 限流统计快照
func (l *ConnectionLimiter) Stats() LimiterStats {
	active := l.Active()
	st := LimiterStats{
		MaxConnections:    l.maxConn,
		ActiveConnections: active,
		RejectedTotal:     l.rejected.Load(),
	}
	if l.maxConn > 0 {
		st.Utilization = float64(active) / float64(l.maxConn)
	}
	return st
}

// LimiterStats 限流统计
type LimiterStats struct {
	MaxConnections    int     `json:"max_connections"`
	ActiveConnections int     `json:"active_connections"`
	RejectedTotal     int64   `json:"rejected_total"`
	Utilization       float64 `json:"utilization"` // 0.0 - 1.0
}
