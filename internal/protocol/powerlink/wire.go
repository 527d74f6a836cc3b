package powerlink

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexString 以空格分隔的小写十六进制表示
func HexString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

// ParseHexString 解析十六进制输入，容忍空格/大小写
func ParseHexString(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return nil, fmt.Errorf("empty hex input")
	}
	b, err := hex.DecodeString(strings.ToLower(cleaned))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}
