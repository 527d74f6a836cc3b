package gateway

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taoyao-code/visonic-proxy/internal/events"
	"github.com/taoyao-code/visonic-proxy/internal/logging"
	"github.com/taoyao-code/visonic-proxy/internal/metrics"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

// Dispatcher 单连接单方向的入站字节处理：流式提帧、标准/B0 解码、
// 日志与指标上报、事件发布。不做并发保护，由所属读循环串行调用。
type Dispatcher struct {
	stream    *powerlink.StreamDecoder
	dec       *b0.Decoder
	wire      *logging.WireLog
	appm      *metrics.AppMetrics
	sink      events.Sink
	sessionID string
	source    string
	last      powerlink.StreamStats
	onFrame   func(*powerlink.Frame)
}

// NewDispatcher 创建方向处理器。source 标识字节来自哪一端（panel/server）。
func NewDispatcher(sessionID, source string, settings *b0.SettingsTable,
	wire *logging.WireLog, appm *metrics.AppMetrics, sink events.Sink) *Dispatcher {
	d := &Dispatcher{
		stream:    powerlink.NewStreamDecoder(),
		dec:       b0.NewDecoder(sessionID+"/"+source, settings),
		wire:      wire,
		appm:      appm,
		sink:      sink,
		sessionID: sessionID,
		source:    source,
	}
	d.dec.SetPageAnomalyHook(func(sub byte, page int) {
		d.wire.Log(logging.MsgStructure, "duplicate page overwritten",
			zap.String("session_id", d.sessionID),
			zap.String("source", d.source),
			zap.String("sub", fmt.Sprintf("%02x", sub)),
			zap.Int("page", page))
	})
	return d
}

// SetOnFrame 设置帧回调，在任何解码动作之前对每个完整帧调用。
// 应答必须走这里，解码耗时才不会拖慢 ACK。
func (d *Dispatcher) SetOnFrame(fn func(*powerlink.Frame)) { d.onFrame = fn }

// Feed 处理一段入站字节并返回其中的完整帧。先逐帧触发回调，再统一解码。
func (d *Dispatcher) Feed(p []byte) []*powerlink.Frame {
	frames := d.stream.Feed(p)
	d.trackStreamStats()
	if d.onFrame != nil {
		for _, f := range frames {
			d.onFrame(f)
		}
	}
	for _, f := range frames {
		d.handle(f)
	}
	return frames
}

// Stats 返回流式解码累计统计
func (d *Dispatcher) Stats() powerlink.StreamStats {
	return d.stream.Stats()
}

func (d *Dispatcher) trackStreamStats() {
	st := d.stream.Stats()
	if d.appm != nil {
		if n := st.Frames - d.last.Frames; n > 0 {
			d.appm.FrameTotal.WithLabelValues("ok").Add(float64(n))
		}
		if n := st.Invalid - d.last.Invalid; n > 0 {
			d.appm.FrameTotal.WithLabelValues("invalid").Add(float64(n))
			d.appm.FrameResyncTotal.Add(float64(n))
		}
	}
	d.last = st
}

func (d *Dispatcher) handle(f *powerlink.Frame) {
	raw := powerlink.HexString(f.Raw)
	if f.IsAck() {
		d.wire.Log(logging.MsgNoise, "ack received",
			zap.String("session_id", d.sessionID),
			zap.String("source", d.source))
		return
	}
	d.wire.Log(logging.MsgRaw, "frame received",
		zap.String("session_id", d.sessionID),
		zap.String("source", d.source),
		zap.String("raw", raw))

	if f.IsB0() {
		d.handleB0(f, raw)
		return
	}

	std := powerlink.DecodeStandard(f)
	if d.appm != nil {
		d.appm.StdRouteTotal.WithLabelValues(std.Command).Inc()
	}
	d.wire.Log(logging.MsgDecoder, "standard message",
		zap.String("session_id", d.sessionID),
		zap.String("source", d.source),
		zap.String("command", std.Command),
		zap.String("name", std.Name))

	ev := events.NewEnvelope(events.EventMessageDecoded, d.sessionID, d.source)
	ev.Command = std.Command
	ev.Name = std.Name
	ev.Raw = raw
	ev.Data = std
	d.publish(ev)
}

func (d *Dispatcher) handleB0(f *powerlink.Frame, raw string) {
	before := d.dec.PendingPages()
	msgs, err := d.dec.Decode(f.Raw)
	if err != nil {
		d.wire.Log(logging.MsgDecoder, "b0 decode failed",
			zap.String("session_id", d.sessionID),
			zap.String("source", d.source),
			zap.String("raw", raw),
			zap.Error(err))
		return
	}
	if d.appm != nil && d.dec.PendingPages() < before {
		d.appm.PagedAssembled.Inc()
	}

	for i := range msgs {
		m := &msgs[i]
		if d.appm != nil {
			d.appm.B0RouteTotal.WithLabelValues(m.Command).Inc()
			if m.Partial {
				d.appm.PagedFragments.Inc()
			}
		}
		d.wire.Log(logging.MsgDecoder, "b0 message",
			zap.String("session_id", d.sessionID),
			zap.String("source", d.source),
			zap.String("type", m.Type),
			zap.String("command", m.Command),
			zap.String("name", m.Name),
			zap.Bool("partial", m.Partial))

		et := events.EventMessageDecoded
		if m.Partial {
			et = events.EventMessagePartial
		}
		ev := events.NewEnvelope(et, d.sessionID, d.source)
		ev.Command = m.Command
		ev.Name = m.Name
		ev.Raw = raw
		ev.Data = m
		d.publish(ev)
	}
}

func (d *Dispatcher) publish(ev *events.Envelope) {
	if d.sink != nil {
		d.sink.Publish(ev)
	}
}
