package gateway

import (
	"fmt"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

// DecodeResult 离线解码输出。B0 报文填充 Messages，标准命令填充
// Standard。Verified 表示补全后的帧能通过严格提取。
type DecodeResult struct {
	Command  string                `json:"command"`
	Name     string                `json:"name"`
	Verified bool                  `json:"verified"`
	Raw      string                `json:"raw"`
	Messages []b0.Message          `json:"messages,omitempty"`
	Standard *powerlink.StdMessage `json:"standard,omitempty"`
}

// DecodeHex 离线解码一条十六进制报文，走与在线链路相同的解码路径。
// 缺失的起始字节、校验和与结束符先补全；分页响应离线时以 Partial
// 形式输出。settings 为 nil 时使用内置配置项标签表。
func DecodeHex(settings *b0.SettingsTable, line string) (*DecodeResult, error) {
	raw, err := powerlink.ParseHexString(line)
	if err != nil {
		return nil, err
	}
	frame, err := powerlink.CompleteFrame(raw)
	if err != nil {
		return nil, err
	}
	if len(frame) < 5 {
		return nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}

	cmd := frame[1]
	res := &DecodeResult{
		Command: fmt.Sprintf("%02x", cmd),
		Name:    powerlink.CommandName(cmd),
		Raw:     powerlink.HexString(frame),
	}
	_, _, er := powerlink.Extract(frame)
	res.Verified = er == powerlink.ExtractComplete

	if cmd == powerlink.CmdB0 {
		msgs, err := b0.NewDecoder("offline", settings).Decode(frame)
		if err != nil {
			return nil, err
		}
		res.Messages = msgs
		return res, nil
	}

	f := &powerlink.Frame{
		Cmd:      cmd,
		Data:     frame[2 : len(frame)-3],
		Checksum: frame[len(frame)-2],
		Raw:      frame,
	}
	res.Standard = powerlink.DecodeStandard(f)
	return res, nil
}
