package injector

import (
	"errors"
	"fmt"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

// 注入命令的两种形式（十六进制均容忍空格与大小写）：
//
//	短码   b0 24           简单 B0 请求
//	       b0 17 18 24     0x17 码表请求，参数为单字节子命令码
//	       b0 35 57 00     0x35/0x42 配置项请求，参数按 (lo, hi) 对
//	整帧   a6 00 … 00 43   任意命令整帧，末尾 0x43，可带起始 0x0d
//
// 末尾为 0x43 时优先判定为整帧。整帧的校验和一律重新计算，
// 不采信输入自带的值。

// ParseLine 将一行注入命令解析为完整线上帧
func ParseLine(line string) ([]byte, error) {
	raw, err := powerlink.ParseHexString(line)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("empty command")
	}
	if raw[len(raw)-1] == powerlink.DataEnd {
		return buildVerbatim(raw)
	}
	if raw[0] == powerlink.CmdB0 {
		if len(raw) < 2 {
			return nil, errors.New("b0 shortcode: sub-command required")
		}
		return b0.BuildShortcode(raw[1], raw[2:])
	}
	return nil, fmt.Errorf("unrecognized command %02x: expect b0 shortcode or full frame ending 43", raw[0])
}

// buildVerbatim 整帧注入：保留输入字节，补定界符并重算校验和
func buildVerbatim(raw []byte) ([]byte, error) {
	body := raw
	if body[0] == powerlink.FrameStart {
		body = body[1:]
	}
	if len(body) < 2 {
		return nil, errors.New("frame too short")
	}
	frame := make([]byte, 0, len(body)+3)
	frame = append(frame, powerlink.FrameStart)
	frame = append(frame, powerlink.BuildChecksummedData(body)...)
	frame = append(frame, powerlink.FrameEnd)
	return frame, nil
}
