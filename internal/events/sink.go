package events

import (
	"go.uber.org/zap"

	"github.com/taoyao-code/visonic-proxy/internal/logging"
)

// Sink 事件输出端。Publish 不得阻塞调用方，慢速输出自行排队或丢弃。
type Sink interface {
	Publish(ev *Envelope)
}

// Fanout 将事件广播到多个输出端
type Fanout struct {
	sinks []Sink
}

// NewFanout 组合多个输出端
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Add 追加输出端
func (f *Fanout) Add(s Sink) {
	if s != nil {
		f.sinks = append(f.sinks, s)
	}
}

// Publish 逐个投递事件，nil Fanout 安全
func (f *Fanout) Publish(ev *Envelope) {
	if f == nil || ev == nil {
		return
	}
	for _, s := range f.sinks {
		s.Publish(ev)
	}
}

// LogSink 将事件写入报文日志
type LogSink struct {
	wire *logging.WireLog
}

// NewLogSink 创建日志输出端
func NewLogSink(wire *logging.WireLog) *LogSink {
	return &LogSink{wire: wire}
}

// Publish 按事件类型选择日志分类输出
func (s *LogSink) Publish(ev *Envelope) {
	if s == nil || s.wire == nil || ev == nil {
		return
	}
	switch ev.EventType {
	case EventMessageDecoded:
		s.wire.Log(logging.MsgDecoded, "message decoded",
			zap.String("session_id", ev.SessionID),
			zap.String("source", ev.Source),
			zap.String("command", ev.Command),
			zap.String("name", ev.Name),
			zap.Any("data", ev.Data))
	case EventMessagePartial:
		s.wire.Log(logging.MsgStructure, "paged fragment buffered",
			zap.String("session_id", ev.SessionID),
			zap.String("source", ev.Source),
			zap.String("command", ev.Command),
			zap.String("name", ev.Name))
	default:
		s.wire.Base().Info(string(ev.EventType),
			zap.String("session_id", ev.SessionID),
			zap.String("source", ev.Source))
	}
}
