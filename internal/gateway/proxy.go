package gateway

import (
	"context"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/visonic-proxy/internal/config"
	"github.com/taoyao-code/visonic-proxy/internal/events"
	"github.com/taoyao-code/visonic-proxy/internal/logging"
	"github.com/taoyao-code/visonic-proxy/internal/metrics"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/session"
	"github.com/taoyao-code/visonic-proxy/internal/tcpserver"
)

// ProxyOwner 透明代理：每个面板连接配对一条到真实监控服务器的连接，
// 两个方向的字节原样转发，解码只在旁路进行，不改写任何线上内容。
// ACK 由真实服务器产生，本端不应答。
type ProxyOwner struct {
	upstream cfgpkg.UpstreamConfig
	settings *b0.SettingsTable
	wire     *logging.WireLog
	logger   *zap.Logger
	appm     *metrics.AppMetrics
	sink     events.Sink
}

// NewProxyOwner 创建转发策略
func NewProxyOwner(cfg cfgpkg.UpstreamConfig, settings *b0.SettingsTable,
	wire *logging.WireLog, logger *zap.Logger,
	appm *metrics.AppMetrics, sink events.Sink) *ProxyOwner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProxyOwner{
		upstream: cfg,
		settings: settings,
		wire:     wire,
		logger:   logger,
		appm:     appm,
		sink:     sink,
	}
}

// Attach 建立上游连接并启动双向泵；上游不可达时直接拆除面板连接，
// 让面板走自身的重连逻辑。
func (o *ProxyOwner) Attach(ctx context.Context, sess *session.Session, cc *tcpserver.ConnContext) {
	d := net.Dialer{Timeout: o.upstream.DialTimeout}
	server, err := d.DialContext(ctx, "tcp", o.upstream.Addr)
	if err != nil {
		o.logger.Error("upstream dial failed",
			zap.String("session_id", sess.ID),
			zap.String("upstream_addr", o.upstream.Addr),
			zap.Error(err))
		_ = cc.Close()
		return
	}
	o.logger.Info("upstream connected",
		zap.String("session_id", sess.ID),
		zap.String("upstream_addr", o.upstream.Addr))

	panelDisp := NewDispatcher(sess.ID, events.SourcePanel, o.settings, o.wire, o.appm, o.sink)
	serverDisp := NewDispatcher(sess.ID, events.SourceServer, o.settings, o.wire, o.appm, o.sink)

	// 面板→服务器：读回调内同步转发，形成天然背压
	cc.SetOnRead(func(p []byte) {
		sess.TouchIn(time.Now())
		if _, werr := server.Write(p); werr != nil {
			o.logger.Warn("relay to upstream failed",
				zap.String("session_id", sess.ID), zap.Error(werr))
			_ = cc.Close()
			return
		}
		o.countRelay("panel_to_server", len(p))
		panelDisp.Feed(p)
	})

	// 服务器→面板
	go func() {
		defer server.Close()
		buf := make([]byte, 4096)
		for {
			n, rerr := server.Read(buf)
			if n > 0 {
				if werr := sess.Write(buf[:n]); werr != nil {
					o.logger.Warn("relay to panel failed",
						zap.String("session_id", sess.ID), zap.Error(werr))
					break
				}
				o.countRelay("server_to_panel", n)
				serverDisp.Feed(buf[:n])
			}
			if rerr != nil {
				if rerr != io.EOF {
					o.logger.Warn("upstream read failed",
						zap.String("session_id", sess.ID), zap.Error(rerr))
				}
				break
			}
		}
		// 上游侧结束，拆除面板连接
		_ = cc.Close()
	}()

	// 面板侧结束或进程退出时拆除上游连接
	go func() {
		select {
		case <-cc.Done():
		case <-ctx.Done():
		}
		_ = server.Close()
	}()
}

func (o *ProxyOwner) countRelay(direction string, n int) {
	if o.appm != nil {
		o.appm.RelayBytes.WithLabelValues(direction).Add(float64(n))
	}
}
