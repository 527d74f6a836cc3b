package powerlink

// 帧定界字节与关键命令
// 布局：0D | cmd | data... | 43 | checksum | 0A
const (
	FrameStart byte = 0x0D
	FrameEnd   byte = 0x0A
	DataEnd    byte = 0x43

	CmdAck byte = 0x02
	CmdB0  byte = 0xB0
)

// MaxFrameLen 单帧扫描上限。B0 数据长度字段为单字节（最长 263 字节帧），
// 留出余量后超限即判定为垃圾并重新同步。
const MaxFrameLen = 512

// Frame Powerlink 帧
type Frame struct {
	Cmd      byte
	Data     []byte // cmd 与末尾 0x43 之间的数据区
	Checksum byte
	Raw      []byte // 完整线上字节 0D..0A
}

// IsB0 是否为 B0 扩展命令帧
func (f *Frame) IsB0() bool { return f.Cmd == CmdB0 }

// IsAck 是否为协议 ACK 帧
func (f *Frame) IsAck() bool { return f.Cmd == CmdAck }

// stdBodyLen 标准命令定长表：body 长度（含命令字节与末尾 0x43）。
// 控制类命令只有 cmd+43，状态/事件类带 10 字节数据。
var stdBodyLen = map[byte]int{
	CmdAck:          2,
	CmdHello:        2,
	CmdAccessDenied: 2,
	CmdEpromRWMode:  2,
	CmdExitRWMode:   2,
	CmdEpromInfo:    12,
	CmdWriteConfig:  12,
	CmdReadConfig:   12,
	CmdArmAlarm:     12,
	CmdReqStatus:    12,
	CmdStatusUpdate: 12,
	CmdZoneType:     12,
	CmdSetDatetime:  12,
}

// isVarLen 变长命令在偏移 4 处携带数据长度字节
func isVarLen(cmd byte) bool {
	return cmd == CmdB0 || cmd == CmdConfigValue
}
