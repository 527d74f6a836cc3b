package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/visonic-proxy/internal/config"
	"github.com/taoyao-code/visonic-proxy/internal/metrics"
)

// RedisSink 将事件发布到 Redis Pub/Sub 频道。
// 纯瞬态广播：无订阅者时事件自然消失，不做持久化与补发。
type RedisSink struct {
	client  *redis.Client
	channel string
	queue   chan *Envelope
	logger  *zap.Logger
	appm    *metrics.AppMetrics
}

// NewRedisSink 创建 Redis 输出端并校验连通性
func NewRedisSink(cfg cfgpkg.RedisEventsConfig, logger *zap.Logger, appm *metrics.AppMetrics) (*RedisSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	channel := cfg.Channel
	if channel == "" {
		channel = "visonic:decoded"
	}
	return &RedisSink{
		client:  client,
		channel: channel,
		queue:   make(chan *Envelope, 256),
		logger:  logger,
		appm:    appm,
	}, nil
}

// Publish 事件入队，不阻塞；队列满时丢弃
func (s *RedisSink) Publish(ev *Envelope) {
	if s == nil || ev == nil {
		return
	}
	select {
	case s.queue <- ev:
	default:
		s.logger.Warn("redis event queue full, event dropped",
			zap.String("event_id", ev.EventID),
			zap.String("event_type", string(ev.EventType)))
		s.count("error")
	}
}

// Run 启动发布 worker，ctx 取消后退出
func (s *RedisSink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.queue:
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("marshal event failed",
					zap.String("event_id", ev.EventID), zap.Error(err))
				s.count("error")
				continue
			}
			if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
				s.logger.Warn("redis publish failed",
					zap.String("event_id", ev.EventID),
					zap.String("channel", s.channel),
					zap.Error(err))
				s.count("error")
				continue
			}
			s.count("ok")
		}
	}
}

// Close 关闭 Redis 连接
func (s *RedisSink) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// HealthCheck 探测 Redis 连通性
func (s *RedisSink) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Stats 返回连接池统计
func (s *RedisSink) Stats() *redis.PoolStats {
	return s.client.PoolStats()
}

func (s *RedisSink) count(result string) {
	if s.appm != nil {
		s.appm.EventPushTotal.WithLabelValues("redis", result).Inc()
	}
}
