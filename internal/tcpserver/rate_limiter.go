package tcpserver

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter 令牌桶节流。注入端逐行调用 Allow，超出速率的行
// 立即拒绝而不是排队，慢速消费不会把连接堵死。
type RateLimiter struct {
	bucket   *rate.Limiter
	perSec   float64
	burst    int
	allowed  atomic.Int64
	rejected atomic.Int64
}

// NewRateLimiter 创建节流器。ratePerSec 为稳定速率，允许小数
// （0.5 表示每 2 秒一个）；burst 为突发容量，缺省为速率的两倍。
func NewRateLimiter(ratePerSec float64, burst int) *RateLimiter {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	if burst <= 0 {
		burst = int(ratePerSec * 2)
		if burst < 1 {
			burst = 1
		}
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		perSec: ratePerSec,
		burst:  burst,
	}
}

// Allow 尝试取一个令牌，失败表示应拒绝本次请求
func (l *RateLimiter) Allow() bool {
	if l.bucket.Allow() {
		l.allowed.Add(1)
		return true
	}
	l.rejected.Add(1)
	return false
}

// Stats 节流统计快照
func (l *RateLimiter) Stats() RateLimiterStats {
	return RateLimiterStats{
		RatePerSecond: l.perSec,
		Burst:         l.burst,
		AllowedTotal:  l.allowed.Load(),
		RejectedTotal: l.rejected.Load(),
	}
}

// RateLimiterStats 节流统计
type RateLimiterStats struct {
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
	AllowedTotal  int64   `json:"allowed_total"`
	RejectedTotal int64   `json:"rejected_total"`
}
