package b0

import (
	"fmt"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

// 请求帧布局（起始字节 0x0D 计）：
//
//	简单请求   0d b0 01 [sub] 01 05 43 [cs] 0a
//	参数请求   0d b0 01 [sub] [len] [paramSize] ff 08 ff [dataLen] [params…] 43 [cs] 0a
//
// len 为数据区总长（paramSize 起至参数末尾，即 5+N）。

// BuildRequest 构造简单请求帧
func BuildRequest(sub byte) []byte {
	return powerlink.Encode(powerlink.CmdB0, []byte{byte(MsgRequest), sub, 0x01, 0x05})
}

// BuildByteListRequest 构造单字节参数请求帧（0x17 等：参数为子命令码表）
func BuildByteListRequest(sub byte, args []byte) []byte {
	if len(args) == 0 {
		return BuildRequest(sub)
	}
	return buildParamRequest(sub, 1, args)
}

// BuildSettingsRequest 构造配置项请求帧（0x35/0x42）。一帧可携带多个
// 配置项 ID，面板按 ID 逐条应答。
func BuildSettingsRequest(sub byte, ids []uint16) ([]byte, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("build settings request %02x: no setting ids", sub)
	}
	params := make([]byte, 0, len(ids)*2)
	for _, id := range ids {
		params = append(params, byte(id), byte(id>>8))
	}
	return buildParamRequest(sub, 2, params), nil
}

// BuildShortcode 短码入口：`B0 <sub> [args…]` 形式的注入命令。
// 0x35/0x42 的参数按 (lo, hi) 对打包，奇数个参数报错；
// 其余子命令带参时按单字节码表打包，无参退化为简单请求。
func BuildShortcode(sub byte, args []byte) ([]byte, error) {
	switch sub {
	case SubSettings, SubSettings2:
		if len(args) == 0 {
			return nil, fmt.Errorf("build shortcode %02x: setting id required", sub)
		}
		if len(args)%2 != 0 {
			return nil, fmt.Errorf("build shortcode %02x: setting ids come in (lo, hi) pairs, got %d bytes", sub, len(args))
		}
		ids := make([]uint16, 0, len(args)/2)
		for i := 0; i+2 <= len(args); i += 2 {
			ids = append(ids, SettingID(args[i], args[i+1]))
		}
		return BuildSettingsRequest(sub, ids)
	}
	return BuildByteListRequest(sub, args), nil
}

// buildParamRequest 参数请求通用构造。数据区总长与帧长字段由布局
// 决定，校验和由外层编码计算。
func buildParamRequest(sub byte, paramSize byte, params []byte) []byte {
	payload := make([]byte, 0, 8+len(params))
	payload = append(payload,
		byte(MsgRequest), sub,
		byte(5+len(params)),
		paramSize, 0xFF, 0x08, 0xFF,
		byte(len(params)),
	)
	payload = append(payload, params...)
	return powerlink.Encode(powerlink.CmdB0, payload)
}
