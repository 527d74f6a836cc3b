package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoyao-code/visonic-proxy/internal/events"
	"github.com/taoyao-code/visonic-proxy/internal/session"
	"github.com/taoyao-code/visonic-proxy/internal/tcpserver"
)

// Owner 面板连接的归属策略。
// standalone 模式本地应答一切请求，proxy 模式把字节原样转发给真实
// 监控服务器并旁路解码。
type Owner interface {
	// Attach 接管新面板连接：安装读回调并启动模式相关的后台泵。
	// 必须快速返回，连接的读循环在其返回后才会启动。
	Attach(ctx context.Context, sess *session.Session, cc *tcpserver.ConnContext)
}

// Gateway 面板侧网关：登记会话、挂接归属策略、广播连接生命周期事件
type Gateway struct {
	ctx      context.Context
	owner    Owner
	registry *session.Registry
	logger   *zap.Logger
	sink     events.Sink
}

// New 创建网关。ctx 贯穿所有连接的后台 goroutine，取消即全部退出。
func New(ctx context.Context, owner Owner, registry *session.Registry,
	logger *zap.Logger, sink events.Sink) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		ctx:      ctx,
		owner:    owner,
		registry: registry,
		logger:   logger,
		sink:     sink,
	}
}

// OnPanelConn TCP 连接回调：每个面板连接建立一个会话并交给归属策略
func (g *Gateway) OnPanelConn(cc *tcpserver.ConnContext) {
	sess := g.registry.Open(cc, cc.ID())
	g.publish(events.NewEnvelope(events.EventPanelConnected, sess.ID, events.SourcePanel))

	g.owner.Attach(g.ctx, sess, cc)

	go func() {
		<-cc.Done()
		g.registry.Remove(sess.ID)
		g.publish(events.NewEnvelope(events.EventPanelClosed, sess.ID, events.SourcePanel))
	}()
}

func (g *Gateway) publish(ev *events.Envelope) {
	if g.sink != nil {
		g.sink.Publish(ev)
	}
}
