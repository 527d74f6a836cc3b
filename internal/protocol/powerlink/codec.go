package powerlink

import (
	"bytes"
	"fmt"
)

// ExtractResult 提取结果状态
type ExtractResult int

const (
	// ExtractComplete 提取到一个完整有效帧
	ExtractComplete ExtractResult = iota
	// ExtractIncomplete 数据不足，等待更多字节
	ExtractIncomplete
	// ExtractInvalid 候选帧校验失败，已滑过重新同步
	ExtractInvalid
)

// Extract 从缓冲区头部提取一帧。
// 返回 consumed 表示调用方应从缓冲区头部丢弃的字节数：
//   - Complete:   帧前垃圾 + 帧本身
//   - Incomplete: 仅帧前垃圾（候选帧保留在缓冲区等待更多字节）
//   - Invalid:    帧前垃圾 + 1（滑过候选起始字节后重新扫描）
func Extract(buf []byte) (*Frame, int, ExtractResult) {
	start := bytes.IndexByte(buf, FrameStart)
	if start < 0 {
		// 无起始标记，整段均为垃圾
		return nil, len(buf), ExtractIncomplete
	}
	b := buf[start:]
	if len(b) < 2 {
		return nil, start, ExtractIncomplete
	}

	cmd := b[1]
	var total int
	switch {
	case isVarLen(cmd):
		if len(b) < 5 {
			return nil, start, ExtractIncomplete
		}
		total = int(b[4]) + 8
	case stdBodyLen[cmd] != 0:
		// 0D + body + checksum + 0A
		total = stdBodyLen[cmd] + 3
	default:
		// 未列入命令：按 "43 cs 0a" 且校验和吻合定位帧尾。
		// 校验和字节恰为 0x0A/0x43 时可能漏检，但已知命令都走长度表，
		// 此分支只为未知扩展保持可观测性。
		limit := len(b)
		if limit > MaxFrameLen {
			limit = MaxFrameLen
		}
		for i := 4; i < limit; i++ {
			if b[i] == FrameEnd && b[i-2] == DataEnd && CalculateChecksum(b[1:i-1]) == b[i-1] {
				total = i + 1
				break
			}
		}
		if total == 0 {
			if len(b) >= MaxFrameLen {
				return nil, start + 1, ExtractInvalid
			}
			return nil, start, ExtractIncomplete
		}
	}

	if total > MaxFrameLen {
		return nil, start + 1, ExtractInvalid
	}
	if len(b) < total {
		return nil, start, ExtractIncomplete
	}

	candidate := b[:total]
	if candidate[total-1] != FrameEnd || candidate[total-3] != DataEnd {
		return nil, start + 1, ExtractInvalid
	}
	if err := VerifyChecksum(candidate[1 : total-1]); err != nil {
		return nil, start + 1, ExtractInvalid
	}

	// 拷贝出独立内存，帧生命周期与调用方缓冲区解耦
	raw := make([]byte, total)
	copy(raw, candidate)
	frame := &Frame{
		Cmd:      raw[1],
		Data:     raw[2 : total-3],
		Checksum: raw[total-2],
		Raw:      raw,
	}
	return frame, start + total, ExtractComplete
}

// Encode 构造一帧出站数据：0D cmd payload 43 checksum 0A。
// 校验和始终重新计算，调用方无需也不能自带。
func Encode(cmd byte, payload []byte) []byte {
	body := make([]byte, 0, len(payload)+2)
	body = append(body, cmd)
	body = append(body, payload...)
	body = append(body, DataEnd)

	out := make([]byte, 0, len(body)+3)
	out = append(out, FrameStart)
	out = append(out, BuildChecksummedData(body)...)
	out = append(out, FrameEnd)
	return out
}

// CompleteFrame 补全一条手工输入的帧：缺起始 0x0D 则前插，缺校验和
// 或结束符则补齐。已携带校验和的输入保持原样，错误值由解码侧报告。
func CompleteFrame(raw []byte) ([]byte, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("frame too short: %d bytes", len(raw))
	}
	out := make([]byte, 0, len(raw)+3)
	if raw[0] != FrameStart {
		out = append(out, FrameStart)
	}
	out = append(out, raw...)
	switch {
	case out[len(out)-1] == FrameEnd:
		// 已是完整帧
	case out[len(out)-1] == DataEnd:
		out = append(out, CalculateChecksum(out[1:]), FrameEnd)
	case out[len(out)-2] == DataEnd:
		out = append(out, FrameEnd)
	default:
		return nil, fmt.Errorf("frame does not end at data end marker 43")
	}
	return out, nil
}

// StreamStats 流式解码统计
type StreamStats struct {
	Frames    uint64 // 成功提取帧数
	Invalid   uint64 // 校验失败的候选帧（滑动重同步次数）
	Discarded uint64 // 丢弃的垃圾字节数
}

// StreamDecoder 处理半包/粘包的流式解码器
type StreamDecoder struct {
	buf   []byte
	stats StreamStats
}

// NewStreamDecoder 创建流式解码器
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

// Feed 追加数据并尽可能解出多帧
func (d *StreamDecoder) Feed(p []byte) []*Frame {
	if len(p) > 0 {
		d.buf = append(d.buf, p...)
	}
	var frames []*Frame

	for {
		frame, n, res := Extract(d.buf)
		switch res {
		case ExtractComplete:
			d.stats.Frames++
			if garbage := n - len(frame.Raw); garbage > 0 {
				d.stats.Discarded += uint64(garbage)
			}
			frames = append(frames, frame)
			d.buf = d.buf[n:]
		case ExtractInvalid:
			d.stats.Invalid++
			d.stats.Discarded += uint64(n)
			d.buf = d.buf[n:]
		default:
			if n > 0 {
				d.stats.Discarded += uint64(n)
				d.buf = d.buf[n:]
			}
			if len(d.buf) == 0 {
				d.buf = nil
			}
			return frames
		}
	}
}

// Stats 返回累计统计
func (d *StreamDecoder) Stats() StreamStats {
	return d.stats
}

// Pending 当前缓冲区中等待的字节数
func (d *StreamDecoder) Pending() int {
	return len(d.buf)
}

// Reset 清空缓冲与统计（连接拆除时调用，半帧静默丢弃）
func (d *StreamDecoder) Reset() {
	d.buf = nil
	d.stats = StreamStats{}
}
