package logging

import "go.uber.org/zap"

// MsgClass 协议报文日志分类。数值即启用该类日志所需的最低 messageLevel。
type MsgClass int

const (
	// MsgDecoded 最终解码结果
	MsgDecoded MsgClass = 1
	// MsgRaw 原始帧十六进制
	MsgRaw MsgClass = 2
	// MsgDecoder 解码器细节（命令路由、未知命令等）
	MsgDecoder MsgClass = 3
	// MsgStructure 结构化解析与分页重组过程
	MsgStructure MsgClass = 4
	// MsgNoise ACK 与保活等高频噪声
	MsgNoise MsgClass = 5
)

// WireLog 按配置的 messageLevel 过滤协议报文日志。
// level N 启用所有 MsgClass <= N 的类别。
type WireLog struct {
	base  *zap.Logger
	level int
}

// NewWireLog 构造报文日志器；level 超出 1~5 时收敛到边界值
func NewWireLog(base *zap.Logger, level int) *WireLog {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return &WireLog{base: base, level: level}
}

// Enabled 判断某分类在当前级别下是否输出
func (w *WireLog) Enabled(c MsgClass) bool {
	return int(c) <= w.level
}

// Log 输出一条受 messageLevel 控制的报文日志
func (w *WireLog) Log(c MsgClass, msg string, fields ...zap.Field) {
	if w == nil || !w.Enabled(c) {
		return
	}
	w.base.Info(msg, fields...)
}

// Base 返回底层 zap 日志器
func (w *WireLog) Base() *zap.Logger {
	return w.base
}
