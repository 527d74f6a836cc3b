package gateway

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	cfgpkg "github.com/taoyao-code/visonic-proxy/internal/config"
	"github.com/taoyao-code/visonic-proxy/internal/events"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
	"github.com/taoyao-code/visonic-proxy/internal/session"
	"github.com/taoyao-code/visonic-proxy/internal/tcpserver"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func readN(t *testing.T, conn net.Conn, n int) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, n)
	total := 0
	for total < n {
		m, err := conn.Read(buf[total:])
		total += m
		if err != nil {
			t.Fatalf("读取 %d 字节失败（已读 %d）: %v", n, total, err)
		}
	}
	return buf
}

func startStandalone(t *testing.T, keepalive time.Duration) (*tcpserver.Server, *session.Registry, *memSink) {
	t.Helper()
	sink := &memSink{}
	registry := session.NewRegistry(time.Minute, nil)
	owner := NewStandaloneOwner(cfgpkg.PanelConfig{
		KeepaliveInterval: keepalive,
		KeepaliveEnable:   keepalive > 0,
	}, nil, registry, testWire(), nil, nil, sink)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if keepalive > 0 {
		go owner.Run(ctx)
	}

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

func TestStandaloneAcksValidFrames(t *testing.T) {
	srv, registry, sink := startStandalone(t, 0)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer conn.Close()

	frame := powerlink.Encode(powerlink.CmdStatusUpdate, make([]byte, 10))
	if _, err := conn.Write(frame); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	got := readN(t, conn, len(powerlink.BuildAck()))
	if !bytes.Equal(got, powerlink.BuildAck()) {
		t.Fatalf("应答不是 ACK: % 02x", got)
	}

	waitFor(t, 2*time.Second, func() bool { return registry.Count() == 1 }, "会话未登记")
	waitFor(t, 2*time.Second, func() bool {
		return len(sink.byType(events.EventPanelConnected)) == 1
	}, "缺少 panel.connected 事件")
	waitFor(t, 2*time.Second, func() bool {
		return len(sink.byType(events.EventMessageDecoded)) == 1
	}, "缺少解码事件")
}

func TestStandaloneNoAckForAck(t *testing.T) {
	srv, _, _ := startStandalone(t, 0)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer conn.Close()

	// 发送 ACK：不应触发回 ACK（避免互相确认）
	if _, err := conn.Write(powerlink.BuildAck()); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 8)
	if n, _ := conn.Read(buf); n != 0 {
		t.Fatalf("对 ACK 不应有应答，收到 % 02x", buf[:n])
	}
}

func TestStandaloneSessionTeardownOnDisconnect(t *testing.T) {
	srv, registry, sink := startStandalone(t, 0)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	if _, err := conn.Write(powerlink.BuildAck()); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return registry.Count() == 1 }, "会话未登记")

	_ = conn.Close()
	waitFor(t, 2*time.Second, func() bool { return registry.Count() == 0 }, "断开后会话未清理")
	waitFor(t, 2*time.Second, func() bool {
		return len(sink.byType(events.EventPanelClosed)) == 1
	}, "缺少 panel.disconnected 事件")
}

func TestStandaloneKeepalive(t *testing.T) {
	srv, _, _ := startStandalone(t, 80*time.Millisecond)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer conn.Close()

	// 先完成一次请求应答，随后保持静默等待保活
	if _, err := conn.Write(powerlink.Encode(powerlink.CmdReqStatus, make([]byte, 10))); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	ack := readN(t, conn, len(powerlink.BuildAck()))
	if !bytes.Equal(ack, powerlink.BuildAck()) {
		t.Fatalf("应答不是 ACK: % 02x", ack)
	}

	want := b0.BuildRequest(b0.SubKeepAlive)
	got := readN(t, conn, len(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("保活帧不符:\n got % 02x\nwant % 02x", got, want)
	}
}
