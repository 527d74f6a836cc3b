package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 事件类型
type EventType string

const (
	// EventMessageDecoded 一条协议消息解码完成
	EventMessageDecoded EventType = "message.decoded"

	// EventMessagePartial 收到分页消息的中间页（尚未重组完成）
	EventMessagePartial EventType = "message.partial"

	// EventPanelConnected 面板连接建立
	EventPanelConnected EventType = "panel.connected"

	// EventPanelClosed 面板连接断开
	EventPanelClosed EventType = "panel.disconnected"

	// EventCommandInjected 注入命令已发往面板
	EventCommandInjected EventType = "command.injected"
)

// 消息来源
const (
	SourcePanel    = "panel"
	SourceServer   = "server"
	SourceInjector = "injector"
	SourceLocal    = "local"
)

// Envelope 对外广播的标准事件结构
type Envelope struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	SessionID string    `json:"session_id,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp int64     `json:"timestamp"`
	Nonce     string    `json:"nonce"`

	// 协议内容（message.* 事件填充）
	Command string `json:"command,omitempty"`
	Name    string `json:"name,omitempty"`
	Raw     string `json:"raw,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// NewEnvelope 创建事件信封，自动填充ID、时间戳与随机数
func NewEnvelope(et EventType, sessionID, source string) *Envelope {
	return &Envelope{
		EventID:   uuid.NewString(),
		EventType: et,
		SessionID: sessionID,
		Source:    source,
		Timestamp: time.Now().Unix(),
		Nonce:     newNonce(),
	}
}
