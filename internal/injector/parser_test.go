package injector

import (
	"bytes"
	"strings"
	"testing"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

func TestParseLine_Shortcode(t *testing.T) {
	got, err := ParseLine("b0 24")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	expected := []byte{0x0d, 0xb0, 0x01, 0x24, 0x01, 0x05, 0x43, 0xe0, 0x0a}
	if !bytes.Equal(got, expected) {
		t.Errorf("ParseLine() = % x, expected % x", got, expected)
	}

	// 大小写与多余空白不影响结果
	upper, err := ParseLine("  B0   24 ")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if !bytes.Equal(upper, got) {
		t.Errorf("大小写敏感: % x vs % x", upper, got)
	}
}

func TestParseLine_ShortcodeWithArgs(t *testing.T) {
	got, err := ParseLine("B0 17 18 24")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	st, err := b0.ParseStructure(got)
	if err != nil {
		t.Fatalf("ParseStructure() error = %v", err)
	}
	if st.Type != b0.MsgRequest || st.SubCmd != b0.SubRequestList {
		t.Errorf("type/sub = %v/0x%02x", st.Type, st.SubCmd)
	}
	if st.ParamSize != 1 || !bytes.Equal(st.Data, []byte{0x18, 0x24}) {
		t.Errorf("参数区 = % x (width %d), expected 18 24 (width 1)", st.Data, st.ParamSize)
	}
	if !st.Verified {
		t.Error("校验和未通过")
	}
}

func TestParseLine_SettingsShortcode(t *testing.T) {
	got, err := ParseLine("b0 35 57 00")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	st, err := b0.ParseStructure(got)
	if err != nil {
		t.Fatalf("ParseStructure() error = %v", err)
	}
	if st.SubCmd != b0.SubSettings || st.ParamSize != 2 {
		t.Errorf("sub/width = 0x%02x/%d, expected 0x35/2", st.SubCmd, st.ParamSize)
	}
	if !bytes.Equal(st.Data, []byte{0x57, 0x00}) {
		t.Errorf("参数区 = % x, expected 57 00", st.Data)
	}

	// 配置项 ID 必须成对
	if _, err := ParseLine("b0 35 57"); err == nil {
		t.Error("奇数个配置项参数未报错")
	}
}

func TestParseLine_FullFrame(t *testing.T) {
	got, err := ParseLine("a6 00 00 00 00 00 00 00 00 00 00 43")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	expected := []byte{
		0x0d, 0xa6,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x43, 0x16, 0x0a,
	}
	if !bytes.Equal(got, expected) {
		t.Errorf("ParseLine() = % x, expected % x", got, expected)
	}

	// 整帧可被流式解码器按变长规则提取
	frame, consumed, res := powerlink.Extract(got)
	if res != powerlink.ExtractComplete || consumed != len(got) {
		t.Fatalf("Extract() = %v consumed %d, expected Complete %d", res, consumed, len(got))
	}
	if frame.Cmd != 0xa6 {
		t.Errorf("Cmd = 0x%02x, expected 0xa6", frame.Cmd)
	}
}

func TestParseLine_FullFrameTolerance(t *testing.T) {
	base, err := ParseLine("a6 00 00 00 00 00 00 00 00 00 00 43")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}

	// 带起始字节、大写、无空格三种写法等价
	variants := []string{
		"0d a6 00 00 00 00 00 00 00 00 00 00 43",
		"A6 00 00 00 00 00 00 00 00 00 00 43",
		strings.ReplaceAll("a6 00 00 00 00 00 00 00 00 00 00 43", " ", ""),
	}
	for _, in := range variants {
		got, err := ParseLine(in)
		if err != nil {
			t.Errorf("ParseLine(%q) error = %v", in, err)
			continue
		}
		if !bytes.Equal(got, base) {
			t.Errorf("ParseLine(%q) = % x, expected % x", in, got, base)
		}
	}
}

func TestParseLine_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"非十六进制", "zz"},
		{"奇数个十六进制字符", "b0 2"},
		{"空输入", "   "},
		{"短码缺子命令", "b0"},
		{"整帧过短", "43"},
		{"未知命令形式", "a6 00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseLine(tc.in); err == nil {
				t.Errorf("ParseLine(%q) 未报错", tc.in)
			}
		})
	}
}
