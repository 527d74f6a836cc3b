package tcpserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config TCP 监听参数
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxConnections int
}

// Server TCP 网关：每个连接一个 ConnContext，读写循环分离
type Server struct {
	cfg        Config
	logger     *zap.Logger
	ln         net.Listener
	wg         sync.WaitGroup
	stopC      chan struct{}
	limiter    *ConnectionLimiter
	nextConnID uint64

	mu    sync.Mutex
	conns map[uint64]*ConnContext

	connHandler func(*ConnContext)
	// 可选指标回调
	onAccept    func()
	onRecvBytes func(n int)
}

// New 创建 TCP 网关
func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		logger:  logger,
		stopC:   make(chan struct{}),
		limiter: NewConnectionLimiter(cfg.MaxConnections),
		conns:   make(map[uint64]*ConnContext),
	}
}

// SetConnHandler 设置连接处理回调，在每个连接的读循环启动前调用
func (s *Server) SetConnHandler(h func(*ConnContext)) { s.connHandler = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept func(), onRecvBytes func(int)) {
	s.onAccept, s.onRecvBytes = onAccept, onRecvBytes
}

// Limiter 返回连接数限流器（用于状态接口）
func (s *Server) Limiter() *ConnectionLimiter { return s.limiter }

// ActiveConnections 当前活跃连接数
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// MaxConnections 连接数上限
func (s *Server) MaxConnections() int { return s.limiter.MaxConnections() }

// Addr 返回实际监听地址（Start 之后有效）
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("tcp listener started", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				// 短暂错误等待后重试
				time.Sleep(50 * time.Millisecond)
				continue
			}

			if !s.limiter.TryAcquire() {
				s.logger.Warn("connection rejected",
					zap.String("remote_addr", conn.RemoteAddr().String()),
					zap.Int("max_connections", s.limiter.MaxConnections()))
				_ = conn.Close()
				continue
			}

			if s.onAccept != nil {
				s.onAccept()
			}

			cc := newConnContext(s, conn)
			s.mu.Lock()
			s.conns[cc.id] = cc
			s.mu.Unlock()

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer func() {
					s.mu.Lock()
					delete(s.conns, cc.id)
					s.mu.Unlock()
					s.limiter.Release()
				}()
				if s.connHandler != nil {
					s.connHandler(cc)
				}
				cc.run()
			}()
		}
	}()
	return nil
}

// Shutdown 优雅关闭：停止接受新连接，关闭存量连接并等待退出
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopC)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.mu.Lock()
	for _, cc := range s.conns {
		_ = cc.Close()
	}
	s.mu.Unlock()

	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
