package gateway

import (
	"strings"
	"testing"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

func TestDecodeHex_B0Response(t *testing.T) {
	// 实抓配置项 0x0148 响应
	res, err := DecodeHex(nil, "0d b0 03 35 08 ff 08 ff 03 48 01 04 ee 43 84 0a")
	if err != nil {
		t.Fatalf("DecodeHex() error = %v", err)
	}
	if res.Command != "b0" || res.Name != "B0" {
		t.Errorf("command/name = %s/%s", res.Command, res.Name)
	}
	if !res.Verified {
		t.Error("有效帧 Verified = false")
	}
	if len(res.Messages) != 1 {
		t.Fatalf("messages = %d, expected 1", len(res.Messages))
	}
	m := res.Messages[0]
	if m.Command != "35" || m.Type != "RESPONSE" {
		t.Errorf("消息 = %s/%s", m.Type, m.Command)
	}
	if res.Standard != nil {
		t.Error("B0 报文不应有标准解码输出")
	}
}

func TestDecodeHex_CompletesMissingMarkers(t *testing.T) {
	// 无起始字节、无校验和、无结束符的手工输入
	res, err := DecodeHex(nil, "b0 01 24 01 05 43")
	if err != nil {
		t.Fatalf("DecodeHex() error = %v", err)
	}
	if !res.Verified {
		t.Error("补全后的帧 Verified = false")
	}
	if len(res.Messages) != 1 || res.Messages[0].Type != "REQUEST" {
		t.Fatalf("messages = %+v", res.Messages)
	}
	if !strings.HasPrefix(res.Raw, "0d b0 01 24") || !strings.HasSuffix(res.Raw, "0a") {
		t.Errorf("raw = %s", res.Raw)
	}
}

func TestDecodeHex_BadChecksumReported(t *testing.T) {
	res, err := DecodeHex(nil, "0d b0 03 35 08 ff 08 ff 03 48 01 04 ee 43 00 0a")
	if err != nil {
		t.Fatalf("DecodeHex() error = %v", err)
	}
	if res.Verified {
		t.Error("错误校验和 Verified = true")
	}
	// 内容仍可解码
	if len(res.Messages) != 1 || res.Messages[0].Command != "35" {
		t.Fatalf("messages = %+v", res.Messages)
	}
	if res.Messages[0].Verified {
		t.Error("消息级 Verified = true")
	}
}

func TestDecodeHex_Standard(t *testing.T) {
	frame := powerlink.Encode(powerlink.CmdReqStatus, make([]byte, 10))
	res, err := DecodeHex(nil, powerlink.HexString(frame))
	if err != nil {
		t.Fatalf("DecodeHex() error = %v", err)
	}
	if res.Name != "REQ_STATUS" || !res.Verified {
		t.Errorf("name/verified = %s/%v", res.Name, res.Verified)
	}
	if res.Standard == nil || res.Standard.Name != "REQ_STATUS" {
		t.Fatalf("standard = %+v", res.Standard)
	}
	if len(res.Messages) != 0 {
		t.Error("标准命令不应有 B0 解码输出")
	}
}

func TestDecodeHex_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"非十六进制", "zz"},
		{"数据区未闭合", "01 02"},
		{"空输入", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeHex(nil, tc.in); err == nil {
				t.Errorf("DecodeHex(%q) 未报错", tc.in)
			}
		})
	}
}
