package powerlink

import "fmt"

// 标准命令字节（非 B0 扩展）
const (
	CmdHello        byte = 0x06
	CmdAccessDenied byte = 0x08
	CmdEpromRWMode  byte = 0x09
	CmdExitRWMode   byte = 0x0F
	CmdEpromInfo    byte = 0x3C
	CmdWriteConfig  byte = 0x3D
	CmdReadConfig   byte = 0x3E
	CmdConfigValue  byte = 0x3F
	CmdArmAlarm     byte = 0xA1
	CmdReqStatus    byte = 0xA2
	CmdStatusUpdate byte = 0xA5
	CmdZoneType     byte = 0xA6
	CmdSetDatetime  byte = 0xAB
)

var stdNames = map[byte]string{
	CmdAck:          "ACK",
	CmdHello:        "HELLO",
	CmdAccessDenied: "ACCESS_DENIED",
	CmdEpromRWMode:  "EPROM_RW_MODE",
	CmdExitRWMode:   "EXIT_RW_MODE",
	CmdEpromInfo:    "EPROM_INFO",
	CmdWriteConfig:  "WRITE_CONFIG",
	CmdReadConfig:   "READ_CONFIG",
	CmdConfigValue:  "CONFIG_VALUE",
	CmdArmAlarm:     "ARM_ALARM",
	CmdReqStatus:    "REQ_STATUS",
	CmdStatusUpdate: "STATUS_UPDATE",
	CmdZoneType:     "ZONE_TYPE",
	CmdSetDatetime:  "SET_DATETIME",
	CmdB0:           "B0",
}

// CommandName 返回命令可读名；未知命令返回 UNKNOWN-xx
func CommandName(cmd byte) string {
	if name, ok := stdNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN-%02x", cmd)
}

// StdMessage 标准消息解码结果
type StdMessage struct {
	Cmd      byte   `json:"-"`
	Command  string `json:"command"`
	Name     string `json:"name"`
	Data     string `json:"data"`
	Checksum string `json:"checksum"`
}

// DecodeStandard 解码标准消息：命令名 + 数据区十六进制。
// 标准消息没有更深的已知结构，保持原样可读即可。
func DecodeStandard(f *Frame) *StdMessage {
	return &StdMessage{
		Cmd:      f.Cmd,
		Command:  fmt.Sprintf("%02x", f.Cmd),
		Name:     CommandName(f.Cmd),
		Data:     HexString(f.Data),
		Checksum: fmt.Sprintf("%02x", f.Checksum),
	}
}
