package injector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/visonic-proxy/internal/config"
	"github.com/taoyao-code/visonic-proxy/internal/events"
	"github.com/taoyao-code/visonic-proxy/internal/metrics"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
	"github.com/taoyao-code/visonic-proxy/internal/session"
	"github.com/taoyao-code/visonic-proxy/internal/tcpserver"
)

const defaultMaxLineBytes = 1024

// ErrNoSession 当前没有可作为注入目标的面板会话
var ErrNoSession = errors.New("no active panel session")

// Server 命令注入监听器：接收按行分隔的明文注入命令，构帧后
// 发往当前目标面板会话。注入端口只应在受信网段暴露，不做鉴权。
type Server struct {
	cfg      cfgpkg.InjectorConfig
	tcp      *tcpserver.Server
	registry *session.Registry
	logger   *zap.Logger
	appm     *metrics.AppMetrics
	sink     events.Sink
}

// New 创建注入服务
func New(cfg cfgpkg.InjectorConfig, registry *session.Registry, logger *zap.Logger,
	appm *metrics.AppMetrics, sink events.Sink) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		appm:     appm,
		sink:     sink,
	}
	s.tcp = tcpserver.New(tcpserver.Config{
		Addr:           cfg.Addr,
		WriteTimeout:   5 * time.Second,
		MaxConnections: cfg.MaxConnections,
	}, logger)
	s.tcp.SetConnHandler(s.onConn)
	return s
}

// Start 启动监听
func (s *Server) Start() error { return s.tcp.Start() }

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error { return s.tcp.Shutdown(ctx) }

// Addr 返回实际监听地址
func (s *Server) Addr() net.Addr { return s.tcp.Addr() }

// TCP 返回底层 TCP 网关，供健康检查读取连接统计
func (s *Server) TCP() *tcpserver.Server { return s.tcp }

// onConn 为每个注入连接装配行缓冲与限流器。行与行之间相互独立：
// 格式错误、限流、无目标会话都只拒绝当前行，连接保持。
func (s *Server) onConn(cc *tcpserver.ConnContext) {
	limiter := tcpserver.NewRateLimiter(s.cfg.LineRate, s.cfg.LineBurst)
	maxLine := s.cfg.MaxLineBytes
	if maxLine <= 0 {
		maxLine = defaultMaxLineBytes
	}
	s.logger.Info("注入连接建立",
		zap.Uint64("connId", cc.ID()),
		zap.String("remote", cc.RemoteAddr().String()))

	var acc []byte
	discarding := false
	cc.SetOnRead(func(p []byte) {
		acc = append(acc, p...)
		for {
			i := bytes.IndexByte(acc, '\n')
			if i < 0 {
				if len(acc) > maxLine {
					// 无换行的超长输入：丢弃累积数据，吞掉后续字节直至行尾
					acc = acc[:0]
					if !discarding {
						discarding = true
						s.fail(cc, "line too long")
					}
				}
				return
			}
			line := string(acc[:i])
			acc = acc[i+1:]
			if discarding {
				discarding = false
				continue
			}
			if len(line) > maxLine {
				s.fail(cc, "line too long")
				continue
			}
			s.handleLine(cc, limiter, strings.TrimSpace(line))
		}
	})
}

// handleLine 处理单行注入命令
func (s *Server) handleLine(cc *tcpserver.ConnContext, limiter *tcpserver.RateLimiter, line string) {
	if line == "" {
		return
	}
	if !limiter.Allow() {
		s.fail(cc, "rate limit exceeded")
		return
	}
	frame, err := s.Inject(line)
	if err != nil {
		s.replyErr(cc, err.Error())
		return
	}
	s.reply(cc, "OK "+powerlink.HexString(frame))
}

// Inject 解析一行注入命令并发往当前目标会话，返回发出的完整帧。
// HTTP 注入接口与注入端口共用该入口。
func (s *Server) Inject(line string) ([]byte, error) {
	frame, err := ParseLine(line)
	if err != nil {
		s.countInject("error")
		return nil, err
	}
	sess, ok := s.registry.Target()
	if !ok {
		s.countInject("error")
		return nil, ErrNoSession
	}
	if err := sess.Write(frame); err != nil {
		s.countInject("error")
		return nil, fmt.Errorf("panel write failed: %w", err)
	}
	s.countInject("ok")
	s.logger.Info("注入命令已发送",
		zap.String("session", sess.ID),
		zap.String("frame", powerlink.HexString(frame)))
	s.publish(sess.ID, frame)
	return frame, nil
}

func (s *Server) countInject(result string) {
	if s.appm != nil {
		s.appm.InjectTotal.WithLabelValues(result).Inc()
	}
}

func (s *Server) publish(sessID string, frame []byte) {
	if s.sink == nil {
		return
	}
	ev := events.NewEnvelope(events.EventCommandInjected, sessID, events.SourceInjector)
	if len(frame) >= 2 {
		ev.Command = fmt.Sprintf("%02x", frame[1])
		ev.Name = powerlink.CommandName(frame[1])
	}
	ev.Raw = powerlink.HexString(frame)
	s.sink.Publish(ev)
}

// fail 行在进入解析前即被拒绝（限流、超长），计入错误指标
func (s *Server) fail(cc *tcpserver.ConnContext, reason string) {
	s.countInject("error")
	s.replyErr(cc, reason)
}

func (s *Server) replyErr(cc *tcpserver.ConnContext, reason string) {
	s.logger.Warn("注入命令被拒绝",
		zap.Uint64("connId", cc.ID()),
		zap.String("reason", reason))
	s.reply(cc, "ERR "+reason)
}

func (s *Server) reply(cc *tcpserver.ConnContext, msg string) {
	if err := cc.Write([]byte(msg + "\n")); err != nil {
		s.logger.Debug("注入应答写入失败", zap.Uint64("connId", cc.ID()), zap.Error(err))
	}
}
