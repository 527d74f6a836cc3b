package gateway

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	cfgpkg "github.com/taoyao-code/visonic-proxy/internal/config"
	"github.com/taoyao-code/visonic-proxy/internal/events"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
	"github.com/taoyao-code/visonic-proxy/internal/session"
	"github.com/taoyao-code/visonic-proxy/internal/tcpserver"
)

// fakeUpstream 模拟真实监控服务器：记录收到的字节并允许下行写入
type fakeUpstream struct {
	ln    net.Listener
	mu    sync.Mutex
	conns []net.Conn
	recv  []byte
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("上游监听失败: %v", err)
	}
	u := &fakeUpstream{ln: ln}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			u.mu.Lock()
			u.conns = append(u.conns, conn)
			u.mu.Unlock()
			go func(c net.Conn) {
				buf := make([]byte, 4096)
				for {
					n, err := c.Read(buf)
					if n > 0 {
						u.mu.Lock()
						u.recv = append(u.recv, buf[:n]...)
						u.mu.Unlock()
					}
					if err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return u
}

func (u *fakeUpstream) addr() string { return u.ln.Addr().String() }

func (u *fakeUpstream) received() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]byte, len(u.recv))
	copy(out, u.recv)
	return out
}

func (u *fakeUpstream) conn(t *testing.T) net.Conn {
	t.Helper()
	var c net.Conn
	waitFor(t, 2*time.Second, func() bool {
		u.mu.Lock()
		defer u.mu.Unlock()
		if len(u.conns) > 0 {
			c = u.conns[0]
			return true
		}
		return false
	}, "上游未收到连接")
	return c
}

func startProxy(t *testing.T, upstreamAddr string) (*tcpserver.Server, *session.Registry, *memSink) {
	t.Helper()
	sink := &memSink{}
	registry := session.NewRegistry(time.Minute, nil)
	owner := NewProxyOwner(cfgpkg.UpstreamConfig{
		Addr: upstreamAddr, DialTimeout: 2 * time.Second,
	}, nil, testWire(), nil, nil, sink)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	gw := New(ctx, owner, registry, nil, sink)
	srv := tcpserver.New(tcpserver.Config{
		Addr: "127.0.0.1:0", WriteTimeout: 2 * time.Second, MaxConnections: 4,
	}, nil)
	srv.SetConnHandler(gw.OnPanelConn)
	if err := srv.Start(); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	t.Cleanup(func() {
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	})
	return srv, registry, sink
}

func TestProxyRelaysBothDirections(t *testing.T) {
	upstream := newFakeUpstream(t)
	srv, _, sink := startProxy(t, upstream.addr())

	panel, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("面板连接失败: %v", err)
	}
	defer panel.Close()

	// 面板→服务器：逐字节透传
	req := b0.BuildRequest(b0.SubPanelStatus)
	if _, err := panel.Write(req); err != nil {
		t.Fatalf("面板写入失败: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return bytes.Equal(upstream.received(), req)
	}, "上游未收到原样转发的请求")

	// 服务器→面板：逐字节透传
	resp := powerlink.Encode(powerlink.CmdStatusUpdate, make([]byte, 10))
	if _, err := upstream.conn(t).Write(resp); err != nil {
		t.Fatalf("上游写入失败: %v", err)
	}
	got := readN(t, panel, len(resp))
	if !bytes.Equal(got, resp) {
		t.Fatalf("面板收到的字节与上游发送不一致:\n got % 02x\nwant % 02x", got, resp)
	}

	// 旁路解码：两个方向都有解码事件
	waitFor(t, 2*time.Second, func() bool {
		var fromPanel, fromServer bool
		for _, ev := range sink.byType(events.EventMessageDecoded) {
			switch ev.Source {
			case events.SourcePanel:
				fromPanel = true
			case events.SourceServer:
				fromServer = true
			}
		}
		return fromPanel && fromServer
	}, "缺少双向旁路解码事件")
}

func TestProxyNoLocalAck(t *testing.T) {
	upstream := newFakeUpstream(t)
	srv, _, _ := startProxy(t, upstream.addr())

	panel, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("面板连接失败: %v", err)
	}
	defer panel.Close()

	frame := powerlink.Encode(powerlink.CmdStatusUpdate, make([]byte, 10))
	if _, err := panel.Write(frame); err != nil {
		t.Fatalf("面板写入失败: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		return len(upstream.received()) == len(frame)
	}, "上游未收到转发")

	// 代理模式下 ACK 由真实服务器产生，本端不得应答
	_ = panel.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 8)
	if n, _ := panel.Read(buf); n != 0 {
		t.Fatalf("代理不应本地应答，收到 % 02x", buf[:n])
	}
}

func TestProxyTearsDownPanelWhenUpstreamDies(t *testing.T) {
	upstream := newFakeUpstream(t)
	srv, registry, _ := startProxy(t, upstream.addr())

	panel, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("面板连接失败: %v", err)
	}
	defer panel.Close()

	if _, err := panel.Write(powerlink.BuildAck()); err != nil {
		t.Fatalf("面板写入失败: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return registry.Count() == 1 }, "会话未登记")

	_ = upstream.conn(t).Close()

	_ = panel.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := panel.Read(buf); err == nil {
		t.Fatal("上游断开后面板连接应被拆除")
	}
	waitFor(t, 2*time.Second, func() bool { return registry.Count() == 0 }, "会话未清理")
}

func TestProxyDialFailureClosesPanel(t *testing.T) {
	// 无人监听的端口，拨号立即失败
	srv, _, _ := startProxy(t, "127.0.0.1:1")

	panel, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("面板连接失败: %v", err)
	}
	defer panel.Close()

	_ = panel.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := panel.Read(buf); err == nil {
		t.Fatal("上游不可达时面板连接应被拆除")
	}
}
