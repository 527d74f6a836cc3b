package b0

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

var errNoChunks = errors.New("no data chunks")

// decodeTimestamp 4 字节倒序 Unix 时间戳，UTC 渲染
func decodeTimestamp(b []byte) string {
	if len(b) < 4 {
		return ""
	}
	ts := int64(binary.LittleEndian.Uint32(b[:4]))
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05")
}

// decodeDateTime 面板时钟字段：ss mn hh dd mm yy，年份 2000 起算
func decodeDateTime(b []byte) string {
	if len(b) < 6 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		2000+int(b[5]), b[4], b[3], b[2], b[1], b[0])
}

// asciiClean 丢弃非 ASCII 字节后转字符串
func asciiClean(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c < 0x80 {
			out = append(out, c)
		}
	}
	return string(out)
}

// renderValue 按字段格式渲染配置项值。width 为定宽字符串表的列宽，
// 非正数取默认 16。
func renderValue(format FieldFormat, data []byte, width int) any {
	switch format {
	case FormatZeroPaddedString:
		return strings.TrimRight(asciiClean(data), "\x00")

	case FormatDirectMapString:
		return hex.EncodeToString(data)

	case FormatFFPaddedString:
		return strings.ReplaceAll(hex.EncodeToString(data), "ff", "")

	case FormatDoubleLEInt:
		if len(data) > 2 {
			vals := make([]int, 0, len(data)/2)
			for i := 0; i+2 <= len(data); i += 2 {
				vals = append(vals, int(binary.LittleEndian.Uint16(data[i:i+2])))
			}
			return vals
		}
		switch len(data) {
		case 0:
			return 0
		case 1:
			return int(data[0])
		}
		return int(binary.LittleEndian.Uint16(data[:2]))

	case FormatInteger:
		switch len(data) {
		case 0:
			return nil
		case 1:
			return int(data[0])
		}
		vals := make([]int, len(data))
		for i, c := range data {
			vals[i] = int(c)
		}
		return vals

	case FormatString:
		return asciiClean(data)

	case FormatSpacePaddedString:
		return strings.TrimRight(asciiClean(data), " ")

	case FormatSpacePaddedStringList:
		if width <= 0 {
			width = 16
		}
		var names []string
		for i := 0; i < len(data); i += width {
			end := i + width
			if end > len(data) {
				end = len(data)
			}
			name := strings.ReplaceAll(asciiClean(data[i:end]), "\x00", "")
			name = strings.TrimRight(name, " ")
			if name != "" {
				names = append(names, name)
			}
		}
		if len(names) == 1 {
			return names[0]
		}
		return names
	}
	return powerlink.HexString(data)
}

// collapse 单元素列表折叠为标量
func collapse(vals []any) any {
	switch len(vals) {
	case 0:
		return nil
	case 1:
		return vals[0]
	}
	return vals
}

// decodeGeneric 通用解码：每个数据块输出粒度、索引与十六进制单元
func decodeGeneric(st *Structure, chunks []Chunk) (any, error) {
	out := make([]GenericChunk, 0, len(chunks))
	for _, c := range chunks {
		hexData := make([]string, 0, len(c.Units))
		for _, u := range c.Units {
			hexData = append(hexData, powerlink.HexString(u))
		}
		out = append(out, GenericChunk{
			Type:      c.Kind.String(),
			Index:     c.Index,
			IndexName: IndexName(c.Index).String(),
			Length:    c.Length,
			Data:      hexData,
		})
	}
	return out, nil
}

// decode0F 0x0F 不走标准块结构，原样输出首块单元
func decode0F(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	c := chunks[0]
	hexData := make([]string, 0, len(c.Units))
	for _, u := range c.Units {
		hexData = append(hexData, powerlink.HexString(u))
	}
	return GenericChunk{
		Type:      c.Kind.String(),
		Index:     c.Index,
		IndexName: IndexName(c.Index).String(),
		Length:    c.Length,
		Data:      hexData,
	}, nil
}

// decode17 请求清单：数据区为面板期望被请求的子命令码表
func decode17(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	flat := chunks[0].Flat()
	out := make([]RequestListEntry, 0, len(flat))
	for _, code := range flat {
		out = append(out, RequestListEntry{
			Code: fmt.Sprintf("%02x", code),
			Name: SubCommandName(code),
		})
	}
	return out, nil
}

// decode18 传感器探测位图：每字节承载 8 个防区的触发位
func decode18(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	tripped := make(map[int]bool)
	for _, c := range chunks {
		flat := c.Flat()
		for i, b := range flat {
			for bit := 0; bit < 8; bit++ {
				zone := i*8 + bit + 1
				tripped[zone] = b&(1<<bit) != 0
			}
		}
	}
	return tripped, nil
}

// decode1F 防区设备型号：每字节为型号码，0 表示空位
func decode1F(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	devices := make(map[int]DeviceTypeEntry)
	zone := 0
	for _, c := range chunks {
		for _, b := range c.Flat() {
			zone++
			if b == 0 {
				continue
			}
			entry := DeviceTypeEntry{Code: fmt.Sprintf("%02x", b)}
			if m, ok := SensorModelFor(b); ok {
				entry.Name = m.Name
				entry.Kind = m.Kind.String()
			} else {
				entry.Name = "Unknown"
				entry.Kind = fmt.Sprintf("UNKNOWN-%02x", b)
			}
			devices[zone] = entry
		}
	}
	return devices, nil
}

// decode22 面板容量：2 字节小端计数表，索引对应设备类别
func decode22(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	capabilities := make(map[string]int)
	for i, u := range chunks[0].Units {
		var v int
		switch len(u) {
		case 0:
		case 1:
			v = int(u[0])
		default:
			v = int(binary.LittleEndian.Uint16(u[:2]))
		}
		capabilities[IndexName(i).String()] = v
	}
	return capabilities, nil
}

// decode24 面板状态：时钟 + 分区数 + 每分区 4 字节状态组
func decode24(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	flat := chunks[0].Flat()
	if len(flat) < 18 {
		return nil, fmt.Errorf("panel status: %w: %d bytes", ErrTooShort, len(flat))
	}

	status := PanelStatus{
		DateTime:   decodeDateTime(flat[8:15]),
		Partitions: int(flat[16]),
		States:     make(map[int]PartitionState),
	}
	part := 0
	for i := 17; i+2 <= len(flat); i += 4 {
		part++
		state := int(flat[i])
		sys := flat[i+1]
		status.States[part] = PartitionState{
			State:         SystemStatusName(state),
			Ready:         sys&(1<<0) != 0,
			AlarmInMemory: sys&(1<<1) != 0,
			Trouble:       sys&(1<<2) != 0,
			Bypass:        sys&(1<<3) != 0,
			Last10Secs:    sys&(1<<4) != 0,
			ZoneEvent:     sys&(1<<5) != 0,
			StatusChanged: sys&(1<<6) != 0,
			AlarmEvent:    sys&(1<<7) != 0,
		}
	}
	return status, nil
}

// decode2A 事件日志：10 字节条目，含倒序时间戳、设备类别、防区、事件码。
// 设备类别为防区（3）时防区号按 1 基修正。
func decode2A(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	var events []LogEntry
	for _, u := range chunks[0].Units {
		if len(u) < 8 {
			continue
		}
		deviceType := int(u[4])
		zone := int(u[5])
		if deviceType == int(IndexZones) {
			zone++
		}
		events = append(events, LogEntry{
			Time:   decodeTimestamp(u[:4]),
			Device: IndexName(deviceType).String(),
			Zone:   zone,
			Event:  EventName(int(u[7])),
		})
	}
	return events, nil
}

// decode3D 防区温度：temp = 值/2 − 40.5，0xFF 表示无温度
func decode3D(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	c := chunks[0]
	temps := make(map[int]float64)
	for zone, u := range c.Units {
		if len(u) == 0 || u[0] == 0xFF {
			continue
		}
		temps[zone+1] = float64(u[0])/2 - 40.5
	}
	return map[string]map[int]float64{IndexName(c.Index).String(): temps}, nil
}

// decode4B 防区最近事件：5 字节条目，倒序时间戳 + 状态码
func decode4B(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	events := make(map[int]ZoneEvent)
	zone := 0
	for _, c := range chunks {
		for _, u := range c.Units {
			zone++
			if len(u) < 5 {
				continue
			}
			events[zone] = ZoneEvent{
				Time:   decodeTimestamp(u[:4]),
				Status: ZoneStatus(u[4]).String(),
			}
		}
	}
	return events, nil
}

// decode51 面板主动求询的子命令码表，原样十六进制输出
func decode51(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	out := make([]string, 0, len(chunks[0].Units))
	for _, u := range chunks[0].Units {
		out = append(out, powerlink.HexString(u))
	}
	return out, nil
}

// decode52 设备数量统计
func decode52(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	flat := chunks[0].Flat()
	if len(flat) < 6 {
		return nil, fmt.Errorf("device counts: %w: %d bytes", ErrTooShort, len(flat))
	}
	return DeviceCounts{
		Unknown: int(flat[0]),
		Sensors: int(flat[1]),
		Keypads: int(flat[2]),
		Keyfobs: int(flat[3]),
		Sirens:  int(flat[4]),
		PGMs:    int(flat[5]),
	}, nil
}

// decode64 面板软件版本，ASCII 渲染
func decode64(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	return asciiClean(chunks[0].Flat()), nil
}

// decode75 带时间戳的日志条目：倒序时间戳 + 余下字节
func decode75(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	var events []TimedEntry
	for _, c := range chunks {
		for _, u := range c.Units {
			if len(u) < 4 {
				continue
			}
			events = append(events, TimedEntry{
				Time: decodeTimestamp(u[:4]),
				Rest: powerlink.HexString(u[4:]),
			})
		}
	}
	return events, nil
}

// decode77 防区光照档位，0xFF 表示无读数
func decode77(st *Structure, chunks []Chunk) (any, error) {
	if len(chunks) == 0 {
		return nil, errNoChunks
	}
	c := chunks[0]
	brightness := make(map[int]string)
	for zone, u := range c.Units {
		if len(u) == 0 || u[0] == 0xFF {
			continue
		}
		brightness[zone+1] = ZoneBrightness(u[0]).String()
	}
	return map[string]map[int]string{IndexName(c.Index).String(): brightness}, nil
}

// newSettingsDecoder 0x35 配置项响应解码器。先查配置项专有解码，
// 否则按数据类型做通用格式渲染；标签由配置项表提供。
func newSettingsDecoder(table *SettingsTable) DecodeFunc {
	return func(st *Structure, chunks []Chunk) (any, error) {
		if len(chunks) == 0 {
			return nil, errNoChunks
		}
		if len(st.Params) < 2 {
			return nil, fmt.Errorf("settings response: %w: no setting id", ErrTooShort)
		}
		c := chunks[0]
		id := SettingID(st.Params[0], st.Params[1])
		flat := c.Flat()

		value, handled := decodeKnownSetting(id, flat)
		if !handled {
			if FieldFormat(c.Kind) == FormatInteger {
				vals := make([]any, 0, len(c.Units))
				for _, u := range c.Units {
					vals = append(vals, renderValue(FormatInteger, u, 30))
				}
				value = collapse(vals)
			} else {
				value = renderValue(FieldFormat(c.Kind), flat, 0)
			}
		}

		return SettingsValue{
			Length:   c.Length,
			ID:       FormatSettingID(id),
			Label:    table.Label(id),
			DataType: FieldFormat(c.Kind).String(),
			Value:    value,
		}, nil
	}
}

// newSettings2Decoder 0x42 配置项响应解码器。条目按扩展头声明的宽度
// 切分，专有解码后退回逐条格式渲染。
func newSettings2Decoder(table *SettingsTable) DecodeFunc {
	return func(st *Structure, chunks []Chunk) (any, error) {
		if len(chunks) == 0 {
			return nil, errNoChunks
		}
		if len(st.Params) < 2 {
			return nil, fmt.Errorf("settings2 response: %w: no setting id", ErrTooShort)
		}
		c := chunks[0]
		id := SettingID(st.Params[0], st.Params[1])

		value, handled := decodeKnownSetting2(id, c.Units)
		if !handled {
			vals := make([]any, 0, len(c.Units))
			for _, u := range c.Units {
				vals = append(vals, renderValue(FieldFormat(c.Kind), u, c.ChunkSize))
			}
			value = collapse(vals)
		}

		return SettingsValue{
			Length:   c.Length,
			ID:       FormatSettingID(id),
			Label:    table.Label(id),
			DataType: FieldFormat(c.Kind).String(),
			Value:    value,
		}, nil
	}
}

// decodeKnownSetting 0x35 配置项专有解码。返回 handled=false 时
// 调用方退回通用格式渲染。
func decodeKnownSetting(id uint16, data []byte) (any, bool) {
	switch id {
	case 0x0007: // CAPABILITIES：2 字节小端计数，索引表与通用索引不同
		capabilities := make(map[string]int)
		for i := 0; i+2 <= len(data); i += 2 {
			capabilities[capabilityIndexName(i/2)] = int(binary.LittleEndian.Uint16(data[i : i+2]))
		}
		return capabilities, true

	case 0x0008: // USER_CODES：4 位十六进制一码，0000 为空位
		codes := make(map[int]string)
		raw := hex.EncodeToString(data)
		slot := 0
		for i := 0; i+4 <= len(raw); i += 4 {
			slot++
			if code := raw[i : i+4]; code != "0000" {
				codes[slot] = code
			}
		}
		return codes, true

	case 0x0031: // ASSIGNED_ZONE_TYPES：每字节一个防区类型码
		var types []string
		for i := 0; i < len(data)-1; i++ {
			types = append(types, ZoneTypeName(int(data[i])))
		}
		return types, true

	case 0x0032: // ASSIGNED_ZONE_NAMES：每字节一个名称表下标
		var ids []int
		for i := 0; i < len(data)-1; i++ {
			ids = append(ids, int(data[i]))
		}
		return ids, true

	case 0x0045, 0x0046: // 名称清单：换行分隔，去尾部空格
		var names []string
		for _, name := range strings.Split(asciiClean(data), "\n") {
			if name = strings.TrimRight(name, " "); name != "" {
				names = append(names, name)
			}
		}
		return names, true

	case 0x0154: // DHCP_IP：3 组 12 位十六进制，每 3 位一段点分
		raw := hex.EncodeToString(data)
		if len(raw) < 36 {
			return nil, false
		}
		quad := func(s string) string {
			return strings.Join([]string{s[0:3], s[3:6], s[6:9], s[9:12]}, ".")
		}
		return DHCPInfo{
			IP:      quad(raw[0:12]),
			Subnet:  quad(raw[12:24]),
			Gateway: quad(raw[24:36]),
		}, true
	}
	return nil, false
}

// decodeKnownSetting2 0x42 配置项专有解码，按条目单元处理
func decodeKnownSetting2(id uint16, units [][]byte) (any, bool) {
	switch id {
	case 0x0080, 0x0081, 0x0082, 0x00A4: // 00 填充字符串表（GPRS/邮箱）
		out := make([]any, 0, len(units))
		for _, u := range units {
			out = append(out, strings.TrimRight(asciiClean(u), "\x00"))
		}
		return collapse(out), true

	case 0x00A5: // 电话号码：ff 填充的未编码数字串
		out := make([]any, 0, len(units))
		for _, u := range units {
			out = append(out, strings.ReplaceAll(hex.EncodeToString(u), "ff", ""))
		}
		return collapse(out), true
	}
	return nil, false
}
