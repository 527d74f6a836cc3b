package powerlink

// BuildAck 构造协议 ACK 帧（固定为 0D 02 43 BA 0A）
func BuildAck() []byte {
	return Encode(CmdAck, nil)
}

// ShouldAck 判断入站有效帧是否需要回 ACK。
// 所有有效帧都确认，但对端发来的 ACK 本身不再确认，避免互相确认死循环。
func ShouldAck(f *Frame) bool {
	return f != nil && !f.IsAck()
}
