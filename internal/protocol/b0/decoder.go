package b0

import (
	"fmt"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

// Decoder B0 报文解码器：结构解析、分页重组、子命令路由三步串联。
// 一个实例对应一条连接的一个方向；分页状态随实例走，不做并发保护，
// 连接拆除时调用 Reset 防止半截分页串到下一条连接。
type Decoder struct {
	table    *Table
	pages    *Reassembler
	settings *SettingsTable

	onPageAnomaly func(sub byte, page int)
}

// NewDecoder 创建解码器。key 标识归属的会话方向；settings 为 nil 时
// 使用内置配置项标签表。
func NewDecoder(key string, settings *SettingsTable) *Decoder {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Decoder{
		table:    defaultTable(settings),
		pages:    NewReassembler(key),
		settings: settings,
	}
}

// Table 路由表，调用方可补注或替换解码器
func (d *Decoder) Table() *Table { return d.table }

// PendingPages 仍在分页缓冲的子命令数
func (d *Decoder) PendingPages() int { return d.pages.Pending() }

// Reset 丢弃分页缓冲
func (d *Decoder) Reset() { d.pages.Discard() }

// SetPageAnomalyHook 设置页异常回调：某页重复到达被覆盖时通知调用方。
// 重组本身覆盖继续，不中断解码。
func (d *Decoder) SetPageAnomalyHook(fn func(sub byte, page int)) { d.onPageAnomaly = fn }

// Decode 解码一条完整 B0 报文。批量配置项请求按 (子命令, 配置项 ID)
// 拆为多条输出，顺序与报文内一致；分页响应在集齐前输出 Partial 条目，
// 集齐后输出合并解码结果。
func (d *Decoder) Decode(raw []byte) ([]Message, error) {
	st, err := ParseStructure(raw)
	if err != nil {
		return nil, err
	}

	switch st.Type {
	case MsgRequest:
		return d.decodeRequest(st), nil

	case MsgAdd, MsgRemove:
		m := d.newMessage(st)
		if len(st.Chunks) > 0 {
			m.Data, _ = decodeGeneric(st, st.Chunks)
		} else {
			m.Data = powerlink.HexString(st.Data)
		}
		return []Message{m}, nil

	case MsgPagedResponse:
		// 页号字节 1 基；恒为 0xFF 的子命令（0x1F）按已见最高页推定
		index := st.Page - 1
		if st.Page == FinalPage {
			index = d.pages.NextIndex(st.SubCmd)
		}
		if d.onPageAnomaly != nil && d.pages.Has(st.SubCmd, index) {
			d.onPageAnomaly(st.SubCmd, index)
		}
		merged, done := d.pages.Feed(st.SubCmd, index, 0, false, st.Chunks)
		if !done {
			return []Message{d.partialMessage(st)}, nil
		}
		return d.finish(st, merged), nil
	}

	// RESPONSE/UNKNOWN：单页响应或分页末页
	chunks := st.Chunks
	if st.Type == MsgResponse && d.pages.Active(st.SubCmd) {
		merged, done := d.pages.Feed(st.SubCmd, d.pages.NextIndex(st.SubCmd), 0, true, st.Chunks)
		if !done {
			return []Message{d.partialMessage(st)}, nil
		}
		chunks = merged
	}
	return d.finish(st, chunks), nil
}

// decodeRequest 请求解码。配置项请求（0x35/0x42）按 ID 对拆分
func (d *Decoder) decodeRequest(st *Structure) []Message {
	settingsSub := st.SubCmd == SubSettings || st.SubCmd == SubSettings2
	if st.HasParams && settingsSub && st.ParamSize == 2 && len(st.Data) >= 2 {
		msgs := make([]Message, 0, len(st.Data)/2)
		for i := 0; i+2 <= len(st.Data); i += 2 {
			m := d.newMessage(st)
			m.Params = powerlink.HexString(st.Data[i : i+2])
			m.Label = d.settings.Label(SettingID(st.Data[i], st.Data[i+1]))
			m.Data = m.Params
			msgs = append(msgs, m)
		}
		return msgs
	}

	m := d.newMessage(st)
	if st.HasParams && st.ParamSize > 0 {
		groups := make([]string, 0, len(st.Data)/st.ParamSize+1)
		for i := 0; i < len(st.Data); i += st.ParamSize {
			end := min(i+st.ParamSize, len(st.Data))
			groups = append(groups, powerlink.HexString(st.Data[i:end]))
		}
		m.Data = groups
	} else {
		m.Data = powerlink.HexString(st.Data)
	}
	return []Message{m}
}

// finish 路由解码并产出最终消息。专有与兜底解码都失败时退回
// 整帧十六进制，保证任何报文都有输出。
func (d *Decoder) finish(st *Structure, chunks []Chunk) []Message {
	m := d.newMessage(st)
	m.Page = st.Page
	data, err := d.table.Route(st, chunks)
	if err != nil {
		data = powerlink.HexString(st.Raw)
	}
	m.Data = data
	return []Message{m}
}

// partialMessage 分页未齐时的过渡输出：本页数据按通用块渲染
func (d *Decoder) partialMessage(st *Structure) Message {
	m := d.newMessage(st)
	m.Page = st.Page
	m.Partial = true
	m.Data, _ = decodeGeneric(st, st.Chunks)
	return m
}

func (d *Decoder) newMessage(st *Structure) Message {
	m := Message{
		Type:     st.Type.String(),
		Command:  fmt.Sprintf("%02x", st.SubCmd),
		Name:     SubCommandName(st.SubCmd),
		Length:   st.LengthAll,
		Checksum: fmt.Sprintf("%02x", st.Raw[len(st.Raw)-2]),
		Verified: st.Verified,
	}
	if st.HasParams && len(st.Params) >= 2 {
		m.Params = powerlink.HexString(st.Params[:2])
		if st.SubCmd == SubSettings || st.SubCmd == SubSettings2 {
			m.Label = d.settings.LabelParams(st.Params)
		}
	}
	return m
}
