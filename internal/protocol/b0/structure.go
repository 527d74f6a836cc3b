package b0

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

var (
	ErrNotB0    = errors.New("not a b0 message")
	ErrTooShort = errors.New("b0 message too short")
)

// Chunk 响应数据区的一个数据块。Units 为按数据粒度切分的单元；
// 粒度小于一个字节（BITS/NIBBLE）时单元为 1 字节。
type Chunk struct {
	Kind   DataKind
	Index  int
	Length int
	Units  [][]byte

	// 0x42 扩展头
	MaxEntries int
	Entries    int
	StartEntry int
	ChunkSize  int
}

// Flat 按序拼接全部单元
func (c *Chunk) Flat() []byte {
	return bytes.Join(c.Units, nil)
}

// Structure B0 报文的结构化解析结果。字段偏移均以起始字节 0x0D 计。
// 请求类报文填充 Data/DataType/ParamSize，响应类报文填充 Page/Chunks/Counter。
type Structure struct {
	Type      MsgType
	SubCmd    byte
	LengthAll int    // 数据区总长（偏移 4）
	HasParams bool   // 是否携带参数
	Params    []byte // 响应侧为配置项 ID（0x35/0x42）
	ParamSize int    // 请求参数宽度（字节）
	Page      int    // 分页页号；RESPONSE 固定 0xFF
	Counter   int    // 响应滚动计数器（倒数第 4 字节）
	Chunks    []Chunk
	Data      []byte // 请求数据区
	DataType  int    // 请求数据类型；无则 -1
	Verified  bool   // 起止标记、数据结束符与校验和全部通过
	Raw       []byte
}

// ParseStructure 解析一条完整 B0 报文（0x0D 起、0x0A 止）。
// 数据长度字段与实际长度不符时按实际截断，不会越界。
func ParseStructure(raw []byte) (*Structure, error) {
	if len(raw) < 9 {
		return nil, fmt.Errorf("parse b0: %w: %d bytes", ErrTooShort, len(raw))
	}
	if raw[1] != powerlink.CmdB0 {
		return nil, fmt.Errorf("parse b0: %w: cmd %02x", ErrNotB0, raw[1])
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)
	raw = buf

	st := &Structure{
		Type:      MsgType(raw[2]),
		SubCmd:    raw[3],
		LengthAll: int(raw[4]),
		Counter:   int(raw[len(raw)-4]),
		DataType:  -1,
		Raw:       raw,
	}
	st.Verified = raw[0] == powerlink.FrameStart &&
		raw[len(raw)-3] == powerlink.DataEnd &&
		raw[len(raw)-1] == powerlink.FrameEnd &&
		powerlink.CalculateChecksum(raw[1:len(raw)-2]) == raw[len(raw)-2]

	switch st.Type {
	case MsgAdd, MsgRemove:
		if len(raw) < 13 {
			return nil, fmt.Errorf("parse b0 %s: %w", st.Type, ErrTooShort)
		}
		st.DataType = int(raw[9])
		if raw[10] == 0xFF {
			// 长度在偏移 11，数据从 12 起
			dl := int(raw[11])
			st.Data = dataSeg(raw, 12, dl)
		} else {
			// 数据块形式：偏移 10 为块索引，11 为块长
			cl := int(raw[11])
			st.Chunks = []Chunk{{
				Kind:   DataKind(raw[9]),
				Index:  int(raw[10]),
				Length: cl,
				Units:  [][]byte{dataSeg(raw, 12, cl)},
			}}
		}
		return st, nil

	case MsgRequest:
		if st.LengthAll > 1 {
			// 参数请求：paramSize ff dataType ff dataLen params…
			if len(raw) < 13 {
				return nil, fmt.Errorf("parse b0 request: %w", ErrTooShort)
			}
			st.HasParams = true
			st.ParamSize = int(raw[5])
			st.DataType = int(raw[7])
			st.Data = dataSeg(raw, 10, int(raw[9]))
		} else {
			// 简单请求：单个 0x05 填充字节
			st.Data = dataSeg(raw, 5, st.LengthAll)
		}
		return st, nil
	}

	// 响应类（PAGED_RESPONSE/RESPONSE/UNKNOWN）
	st.Page = int(raw[5])

	switch {
	case len(raw) >= 12 && raw[6] == 0:
		// 首块类型为 0：单块，长度在偏移 11，数据从 12 起
		dl := int(raw[11])
		data := dataSeg(raw, 12, dl)
		st.Chunks = []Chunk{{
			Kind:   KindUnknown,
			Index:  255,
			Length: dl,
			Units:  [][]byte{data},
		}}

	case st.SubCmd == SubUnknown0F:
		// 0f 不走标准块结构：类型在偏移 6，数据从 8 起
		if len(raw) < 12 {
			return nil, fmt.Errorf("parse b0 0f: %w", ErrTooShort)
		}
		kind := DataKind(raw[6])
		dl := st.LengthAll - 4
		st.Chunks = []Chunk{{
			Kind:   kind,
			Index:  255,
			Length: dl,
			Units:  splitUnits(dataSeg(raw, 8, dl), kind.UnitSize()),
		}}

	case st.SubCmd == SubSettings:
		// 0x35：偏移 9..10 为配置项 ID，数据从 12 起
		if len(raw) < 15 {
			return nil, fmt.Errorf("parse b0 35: %w", ErrTooShort)
		}
		st.HasParams = true
		st.Params = raw[9:11]
		kind := DataKind(raw[11])
		dl := int(raw[8]) - 3
		st.Chunks = []Chunk{{
			Kind:   kind,
			Index:  255,
			Length: dl,
			Units:  splitUnits(dataSeg(raw, 12, dl), kind.UnitSize()),
		}}

	case st.SubCmd == SubSettings2:
		// 0x42：扩展头带条目数与条目宽度，数据从 23 起
		if len(raw) < 26 {
			return nil, fmt.Errorf("parse b0 42: %w", ErrTooShort)
		}
		st.HasParams = true
		st.Params = raw[9:11]
		dl := int(raw[8]) - 14
		chunkSize := int(binary.LittleEndian.Uint16(raw[13:15])) / 8
		var units [][]byte
		if chunkSize > 0 {
			units = splitUnits(dataSeg(raw, 23, dl), chunkSize)
		}
		st.Chunks = []Chunk{{
			Kind:       DataKind(raw[17]),
			Index:      255,
			Length:     dl,
			Units:      units,
			MaxEntries: int(binary.LittleEndian.Uint16(raw[11:13])),
			Entries:    int(binary.LittleEndian.Uint16(raw[21:23])),
			StartEntry: int(binary.LittleEndian.Uint16(raw[19:21])),
			ChunkSize:  chunkSize,
		}}

	default:
		// 通用块流：lead | dataType | index | chunkLen | data，
		// lead 为页号或 0xFF，解析时跳过
		for i := 5; i <= st.LengthAll-1; {
			if i+4 > len(raw)-3 {
				break
			}
			cl := int(raw[i+3])
			kind := DataKind(raw[i+1])
			st.Chunks = append(st.Chunks, Chunk{
				Kind:   kind,
				Index:  int(raw[i+2]),
				Length: cl,
				Units:  splitUnits(dataSeg(raw, i+4, cl), kind.UnitSize()),
			})
			i += 4 + cl
		}
	}
	return st, nil
}

// dataSeg 取 raw[start : start+n]，上界收在数据结束符之前，越界截断
func dataSeg(raw []byte, start, n int) []byte {
	end := len(raw) - 3
	if n < 0 {
		n = 0
	}
	if start > end {
		return nil
	}
	if start+n > end {
		n = end - start
	}
	return raw[start : start+n]
}

// splitUnits 按单元宽度切分数据
func splitUnits(data []byte, size int) [][]byte {
	if size < 1 {
		size = 1
	}
	units := make([][]byte, 0, (len(data)+size-1)/size)
	for i := 0; i < len(data); i += size {
		end := i + size
		if end > len(data) {
			end = len(data)
		}
		units = append(units, data[i:end])
	}
	return units
}
