package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/visonic-proxy/internal/config"
	"github.com/taoyao-code/visonic-proxy/internal/events"
	"github.com/taoyao-code/visonic-proxy/internal/logging"
	"github.com/taoyao-code/visonic-proxy/internal/metrics"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
	"github.com/taoyao-code/visonic-proxy/internal/session"
	"github.com/taoyao-code/visonic-proxy/internal/tcpserver"
)

// StandaloneOwner 假监控服务器：没有上游，本地确认面板的一切有效帧，
// 并在出站静默时发送保活请求维持面板会话。
type StandaloneOwner struct {
	settings  *b0.SettingsTable
	registry  *session.Registry
	wire      *logging.WireLog
	logger    *zap.Logger
	appm      *metrics.AppMetrics
	sink      events.Sink
	keepalive time.Duration
	enabled   bool
}

// NewStandaloneOwner 创建本地应答策略
func NewStandaloneOwner(cfg cfgpkg.PanelConfig, settings *b0.SettingsTable,
	registry *session.Registry, wire *logging.WireLog, logger *zap.Logger,
	appm *metrics.AppMetrics, sink events.Sink) *StandaloneOwner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StandaloneOwner{
		settings:  settings,
		registry:  registry,
		wire:      wire,
		logger:    logger,
		appm:      appm,
		sink:      sink,
		keepalive: cfg.KeepaliveInterval,
		enabled:   cfg.KeepaliveEnable,
	}
}

// Attach 安装读回调：解帧、解码、对有效帧回 ACK
func (o *StandaloneOwner) Attach(_ context.Context, sess *session.Session, cc *tcpserver.ConnContext) {
	disp := NewDispatcher(sess.ID, events.SourcePanel, o.settings, o.wire, o.appm, o.sink)
	disp.SetOnFrame(func(f *powerlink.Frame) {
		if !powerlink.ShouldAck(f) {
			return
		}
		if err := sess.Write(powerlink.BuildAck()); err != nil {
			o.logger.Warn("ack write failed",
				zap.String("session_id", sess.ID), zap.Error(err))
			return
		}
		if o.appm != nil {
			o.appm.AckSentTotal.Inc()
		}
		o.wire.Log(logging.MsgNoise, "ack sent",
			zap.String("session_id", sess.ID))
	})
	cc.SetOnRead(func(p []byte) {
		sess.TouchIn(time.Now())
		disp.Feed(p)
	})
}

// Run 保活循环：出站静默超过间隔的会话收到一条保活请求。
// 面板长时间收不到服务器流量会主动断开，保活维持连接存活。
func (o *StandaloneOwner) Run(ctx context.Context) {
	if !o.enabled || o.keepalive <= 0 {
		return
	}
	tick := o.keepalive / 2
	if tick <= 0 {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, s := range o.registry.All() {
				if now.Sub(s.LastOut()) < o.keepalive {
					continue
				}
				if err := s.Write(b0.BuildRequest(b0.SubKeepAlive)); err != nil {
					o.logger.Warn("keepalive write failed",
						zap.String("session_id", s.ID), zap.Error(err))
					continue
				}
				if o.appm != nil {
					o.appm.KeepaliveTotal.Inc()
				}
				o.wire.Log(logging.MsgNoise, "keepalive sent",
					zap.String("session_id", s.ID))
			}
		}
	}
}
