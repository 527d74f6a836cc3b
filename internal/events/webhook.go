package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/visonic-proxy/internal/config"
	"github.com/taoyao-code/visonic-proxy/internal/metrics"
)

var defaultBackoff = []time.Duration{
	100 * time.Millisecond, 200 * time.Millisecond, 500 * time.Millisecond, time.Second, 2 * time.Second,
}

// WebhookSink 将事件经 HTTP POST 推送到外部接收端，请求体带 HMAC 签名头。
// 事件先进入有界队列，由独立 worker 串行发送；队列满时丢弃并告警。
type WebhookSink struct {
	client  *http.Client
	url     string
	signer  *Signer
	retries int
	backoff []time.Duration
	queue   chan *Envelope
	logger  *zap.Logger
	appm    *metrics.AppMetrics
}

// NewWebhookSink 创建 Webhook 输出端
func NewWebhookSink(cfg cfgpkg.WebhookEventsConfig, logger *zap.Logger, appm *metrics.AppMetrics) *WebhookSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &WebhookSink{
		client:  &http.Client{Timeout: timeout},
		url:     cfg.URL,
		signer:  NewSigner(cfg.Secret),
		retries: retries,
		backoff: defaultBackoff,
		queue:   make(chan *Envelope, queueSize),
		logger:  logger,
		appm:    appm,
	}
}

// Publish 事件入队，不阻塞；队列满时丢弃
func (s *WebhookSink) Publish(ev *Envelope) {
	if s == nil || ev == nil {
		return
	}
	select {
	case s.queue <- ev:
	default:
		s.logger.Warn("webhook queue full, event dropped",
			zap.String("event_id", ev.EventID),
			zap.String("event_type", string(ev.EventType)))
		s.count("error")
	}
}

// Run 启动发送 worker，ctx 取消后退出
func (s *WebhookSink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.queue:
			if err := s.send(ctx, ev); err != nil {
				s.logger.Warn("webhook push failed",
					zap.String("event_id", ev.EventID),
					zap.String("event_type", string(ev.EventType)),
					zap.Error(err))
				s.count("error")
				continue
			}
			s.count("ok")
		}
	}
}

// send 带签名与有限重试的单事件发送；仅网络错误与 5xx 触发重试
func (s *WebhookSink) send(ctx context.Context, ev *Envelope) error {
	u, err := url.Parse(s.url)
	if err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	sig := s.signer.Sign(http.MethodPost, u.Path, body)

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Signature", sig.Value)
		req.Header.Set("X-Timestamp", fmt.Sprintf("%d", sig.Timestamp))
		req.Header.Set("X-Nonce", sig.Nonce)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			code := resp.StatusCode
			respBody, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if code >= 200 && code < 300 {
				return nil
			}
			lastErr = fmt.Errorf("http %d: %s", code, respBody)
			// 4xx 为接收端拒绝，重试无意义
			if code < 500 {
				return lastErr
			}
		}
		if attempt == s.retries {
			break
		}
		backoff := s.backoff[min(attempt, len(s.backoff)-1)]
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

func (s *WebhookSink) count(result string) {
	if s.appm != nil {
		s.appm.EventPushTotal.WithLabelValues("webhook", result).Inc()
	}
}
