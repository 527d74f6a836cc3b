package powerlink

import (
	"testing"
)

func TestCalculateChecksum(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		expected byte
	}{
		{
			name:     "空数据",
			body:     []byte{},
			expected: 0x00, // 0xFF - 0 = 0xFF，按协议归零
		},
		{
			name:     "ACK帧体",
			body:     []byte{0x02, 0x43},
			expected: 0xBA,
		},
		{
			name:     "实抓B0设置响应帧体",
			body:     []byte{0xb0, 0x03, 0x35, 0x08, 0xff, 0x08, 0xff, 0x03, 0x48, 0x01, 0x04, 0xee, 0x43},
			expected: 0x84,
		},
		{
			name:     "累加和为255的倍数",
			body:     []byte{0xFF},
			expected: 0x00, // sum%0xFF==0 时结果 0xFF 归零
		},
		{
			name:     "单字节",
			body:     []byte{0x01},
			expected: 0xFE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateChecksum(tt.body)
			if result != tt.expected {
				t.Errorf("CalculateChecksum() = 0x%02X, expected 0x%02X", result, tt.expected)
			}
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "空数据",
			data:    []byte{},
			wantErr: true,
		},
		{
			name:    "正确的校验和",
			data:    []byte{0x02, 0x43, 0xBA},
			wantErr: false,
		},
		{
			name:    "错误的校验和",
			data:    []byte{0x02, 0x43, 0xFF},
			wantErr: true,
		},
		{
			name:    "实抓帧体带校验和",
			data:    []byte{0xb0, 0x03, 0x35, 0x08, 0xff, 0x08, 0xff, 0x03, 0x48, 0x01, 0x04, 0xee, 0x43, 0x84},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyChecksum(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyChecksum() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildChecksummedData(t *testing.T) {
	body := []byte{0x02, 0x43}
	result := BuildChecksummedData(body)
	expected := []byte{0x02, 0x43, 0xBA}
	if len(result) != len(expected) {
		t.Fatalf("BuildChecksummedData() length = %d, expected %d", len(result), len(expected))
	}
	for i := range result {
		if result[i] != expected[i] {
			t.Errorf("BuildChecksummedData()[%d] = 0x%02X, expected 0x%02X", i, result[i], expected[i])
		}
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	// 构建与验证的往返流程
	testData := [][]byte{
		{0xb0, 0x01, 0x24, 0x01, 0x05, 0x43},
		{0xa6, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x43},
		{0x06, 0x43},
	}

	for i, body := range testData {
		checksummed := BuildChecksummedData(body)
		if err := VerifyChecksum(checksummed); err != nil {
			t.Errorf("Test %d: round-trip failed: %v", i, err)
		}
	}
}
