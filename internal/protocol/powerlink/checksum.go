package powerlink

import "errors"

var (
	// ErrChecksumMismatch checksum校验失败
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// CalculateChecksum 计算Powerlink协议校验和
// 算法：对 body 所有字节累加后取 0xFF - (sum % 0xFF)，结果为 0xFF 时归零。
// body 覆盖范围：命令字节到末尾 0x43（含），不包含定界符 0D/0A。
func CalculateChecksum(body []byte) byte {
	var sum uint32
	for _, b := range body {
		sum += uint32(b)
	}
	checksum := 0xFF - byte(sum%0xFF)
	if checksum == 0xFF {
		checksum = 0x00
	}
	return checksum
}

// VerifyChecksum 验证校验和
// bodyWithChecksum: 包含校验和的完整数据（从命令字节到校验和字节）
func VerifyChecksum(bodyWithChecksum []byte) error {
	if len(bodyWithChecksum) < 1 {
		return errors.New("data too short for checksum verification")
	}

	checksumPos := len(bodyWithChecksum) - 1
	receivedChecksum := bodyWithChecksum[checksumPos]

	expectedChecksum := CalculateChecksum(bodyWithChecksum[:checksumPos])

	if receivedChecksum != expectedChecksum {
		return ErrChecksumMismatch
	}

	return nil
}

// BuildChecksummedData 为数据追加校验和
// body: 不包含校验和的数据（命令字节到末尾 0x43）
// 返回：带校验和的完整数据
func BuildChecksummedData(body []byte) []byte {
	checksum := CalculateChecksum(body)
	result := make([]byte, len(body)+1)
	copy(result, body)
	result[len(body)] = checksum
	return result
}
