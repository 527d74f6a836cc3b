package b0

import "sync"

// DecodeFunc 子命令数据解码器。chunks 为该响应（必要时已跨页合并）
// 的数据块；返回写入 Message.Data 的内容。
type DecodeFunc func(st *Structure, chunks []Chunk) (any, error)

// Table 子命令路由表（sub -> DecodeFunc）。未注册的子命令走兜底
// 解码器，保证未知报文仍有可观测输出。
type Table struct {
	mu       sync.RWMutex
	handlers map[byte]DecodeFunc
	fallback DecodeFunc
}

func NewTable() *Table {
	return &Table{handlers: make(map[byte]DecodeFunc), fallback: decodeGeneric}
}

func (t *Table) Register(sub byte, fn DecodeFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[sub] = fn
}

// SetFallback 替换兜底解码器，fn 为 nil 时忽略
func (t *Table) SetFallback(fn DecodeFunc) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fallback = fn
}

// Route 按子命令分发解码。专有解码失败时退回兜底解码器，
// 不让格式缺陷打断整条报文的输出。
func (t *Table) Route(st *Structure, chunks []Chunk) (any, error) {
	t.mu.RLock()
	h := t.handlers[st.SubCmd]
	fallback := t.fallback
	t.mu.RUnlock()

	if h != nil {
		if data, err := h(st, chunks); err == nil {
			return data, nil
		}
	}
	return fallback(st, chunks)
}

// Known 是否存在专有解码器
func (t *Table) Known(sub byte) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.handlers[sub] != nil
}

// defaultTable 内置全部专有解码器的路由表
func defaultTable(settings *SettingsTable) *Table {
	t := NewTable()
	t.Register(SubUnknown0F, decode0F)
	t.Register(SubRequestList, decode17)
	t.Register(SubSensorDetection, decode18)
	t.Register(SubDeviceTypes, decode1F)
	t.Register(SubCapabilities, decode22)
	t.Register(SubPanelStatus, decode24)
	t.Register(SubStandardLog, decode2A)
	t.Register(SubLegacyLog, decode2A)
	t.Register(SubZoneTemps, decode3D)
	t.Register(SubSettings, newSettingsDecoder(settings))
	t.Register(SubSettings2, newSettings2Decoder(settings))
	t.Register(SubZoneLastEvent, decode4B)
	t.Register(SubAskMe, decode51)
	t.Register(SubDeviceCounts, decode52)
	t.Register(SubSoftwareVersion, decode64)
	t.Register(SubSomeLog, decode75)
	t.Register(SubZoneBrightness, decode77)
	return t
}
