package tcpserver

import (
	"context"
	"net"
	"testing"
	"time"
)

func startEchoServer(t *testing.T, ccC chan *ConnContext) *Server {
	t.Helper()
	s := New(Config{Addr: "127.0.0.1:0", WriteTimeout: 2 * time.Second, MaxConnections: 4}, nil)
	s.SetConnHandler(func(cc *ConnContext) {
		cc.SetOnRead(func(b []byte) {
			_ = cc.Write(b)
		})
		if ccC != nil {
			select {
			case ccC <- cc:
			default:
			}
		}
	})
	if err := s.Start(); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func TestServerEcho(t *testing.T) {
	s := startEchoServer(t, nil)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer conn.Close()

	payload := []byte{0x0d, 0x02, 0x43, 0xba, 0x0a}
	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, len(payload))
	if _, err := readFull(conn, got); err != nil {
		t.Fatalf("读取回显失败: %v", err)
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("回显不一致: got=%x want=%x", got, payload)
		}
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func TestConnDoneOnClientClose(t *testing.T) {
	ccC := make(chan *ConnContext, 1)
	s := startEchoServer(t, ccC)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	// 触发一次读回调，确保连接已建立
	_, _ = conn.Write([]byte{0x0d})

	var cc *ConnContext
	select {
	case cc = <-ccC:
	case <-time.After(2 * time.Second):
		t.Fatal("未收到连接回调")
	}

	_ = conn.Close()
	select {
	case <-cc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("客户端断开后 Done 未关闭")
	}

	// 关闭后的写入应返回错误
	if err := cc.Write([]byte{0x00}); err == nil {
		t.Fatal("关闭后的写入应失败")
	}
}

func TestServerRejectsBeyondMaxConnections(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", WriteTimeout: time.Second, MaxConnections: 1}, nil)
	s.SetConnHandler(func(cc *ConnContext) {})
	if err := s.Start(); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})

	keep, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer keep.Close()

	// 等首个连接占住唯一名额
	deadline := time.Now().Add(2 * time.Second)
	for s.ActiveConnections() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("首个连接未登记")
		}
		time.Sleep(10 * time.Millisecond)
	}

	over, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer over.Close()

	// 超出名额的连接在 accept 后立即被服务端关闭
	_ = over.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := over.Read(buf); err == nil {
		t.Fatal("超出名额的连接应被服务端关闭")
	}
	if got := s.Limiter().Stats().RejectedTotal; got < 1 {
		t.Fatalf("拒绝计数 = %d", got)
	}
}

func TestServerShutdownClosesConns(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", WriteTimeout: time.Second, MaxConnections: 2}, nil)
	s.SetConnHandler(func(cc *ConnContext) {})
	if err := s.Start(); err != nil {
		t.Fatalf("启动失败: %v", err)
	}

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer conn.Close()
	// 留出 accept 时间
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("关闭失败: %v", err)
	}

	// 服务端已关闭，客户端读取应立即结束
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err == nil {
		t.Fatal("关闭后读取应返回错误")
	}
}
