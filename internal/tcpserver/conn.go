package tcpserver

import (
	"errors"
	"net"
	"sync/atomic"
	"time"
)

// ErrConnClosed 连接已关闭时的写入错误
var ErrConnClosed = errors.New("connection closed")

// ErrWriteQueueFull 写队列在超时时间内未腾出空间
var ErrWriteQueueFull = errors.New("write queue timeout")

const (
	// outQueueDepth 出站帧队列深度。面板回包与注入下行共用同一队列，
	// 超出深度说明对端长时间不收包，由写超时兜底。
	outQueueDepth = 128
	// readBufSize 单次 Read 缓冲。帧长远小于该值，
	// 取 4KiB 可一次读入粘连的多帧。
	readBufSize = 4096
	// fallbackWriteTimeout 未配置写超时时的入队等待上限
	fallbackWriteTimeout = 5 * time.Second
)

// ConnContext 为每个 TCP 连接提供读/写循环与回调能力。
// 出站字节全部经单写者队列串行落到套接字上，保证帧不交叉。
type ConnContext struct {
	srv    *Server
	raw    net.Conn
	id     uint64
	outC   chan []byte
	quitC  chan struct{}
	doneC  chan struct{}
	closed atomic.Bool
	onRead func([]byte)
}

func newConnContext(s *Server, c net.Conn) *ConnContext {
	return &ConnContext{
		srv:   s,
		raw:   c,
		id:    atomic.AddUint64(&s.nextConnID, 1),
		outC:  make(chan []byte, outQueueDepth),
		quitC: make(chan struct{}),
		doneC: make(chan struct{}),
	}
}

// ID 返回连接ID（单进程唯一递增）
func (cc *ConnContext) ID() uint64 { return cc.id }

// RemoteAddr 返回远端地址
func (cc *ConnContext) RemoteAddr() net.Addr { return cc.raw.RemoteAddr() }

// SetOnRead 安装读取回调（收到上行原始字节时触发）。
// 必须在连接处理回调内调用，读循环启动后不可再更换。
func (cc *ConnContext) SetOnRead(h func([]byte)) { cc.onRead = h }

// Write 把 b 的副本投入出站队列。队列满时最多等待写超时，
// 连接已关闭或等待超时返回对应错误。
func (cc *ConnContext) Write(b []byte) error {
	if cc.closed.Load() {
		return ErrConnClosed
	}
	// 复制一份，调用方可立即复用底层切片
	dup := make([]byte, len(b))
	copy(dup, b)

	wait := cc.srv.cfg.WriteTimeout
	if wait <= 0 {
		wait = fallbackWriteTimeout
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case cc.outC <- dup:
		return nil
	case <-cc.quitC:
		return ErrConnClosed
	case <-t.C:
		return ErrWriteQueueFull
	}
}

// Close 关闭连接与写队列，幂等
func (cc *ConnContext) Close() error {
	if !cc.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(cc.quitC)
	return cc.raw.Close()
}

// Done 返回连接结束通知通道，读写循环全部退出后关闭
func (cc *ConnContext) Done() <-chan struct{} { return cc.doneC }

// run 驱动连接生命周期：并行跑读/写循环，读循环退出后
// 收敛写循环，最后关闭 doneC 广播结束。
func (cc *ConnContext) run() {
	defer cc.Close()

	writerDone := make(chan struct{})
	go cc.writeLoop(writerDone)
	cc.readLoop()

	cc.Close()
	<-writerDone
	close(cc.doneC)
}

// writeLoop 是唯一向底层连接写入的 goroutine
func (cc *ConnContext) writeLoop(done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case frame := <-cc.outC:
			if cc.srv.cfg.WriteTimeout > 0 {
				_ = cc.raw.SetWriteDeadline(time.Now().Add(cc.srv.cfg.WriteTimeout))
			}
			if _, err := cc.raw.Write(frame); err != nil {
				return
			}
		case <-cc.quitC:
			return
		}
	}
}

// readLoop 阻塞读取上行字节并派发给回调，连接出错时返回
func (cc *ConnContext) readLoop() {
	if cc.srv.cfg.ReadTimeout > 0 {
		_ = cc.raw.SetReadDeadline(time.Now().Add(cc.srv.cfg.ReadTimeout))
	}
	buf := make([]byte, readBufSize)
	for {
		n, err := cc.raw.Read(buf)
		if n > 0 {
			if cc.srv.onRecvBytes != nil {
				cc.srv.onRecvBytes(n)
			}
			if cc.onRead != nil {
				cc.onRead(buf[:n])
			}
		}
		if err == nil {
			continue
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			// 读超时仅刷新 deadline，空闲连接由看门狗负责拆除
			if cc.srv.cfg.ReadTimeout > 0 {
				_ = cc.raw.SetReadDeadline(time.Now().Add(cc.srv.cfg.ReadTimeout))
			}
			continue
		}
		return
	}
}
