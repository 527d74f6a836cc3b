package b0

import (
	"reflect"
	"testing"
)

func TestDecodeTimestamp(t *testing.T) {
	// 0x66000000 = 2024-03-24 10:27:12 UTC，字节倒序存储
	got := decodeTimestamp([]byte{0x00, 0x00, 0x00, 0x66})
	if got != "2024-03-24 10:27:12" {
		t.Errorf("decodeTimestamp() = %q, expected 2024-03-24 10:27:12", got)
	}
	if got := decodeTimestamp([]byte{0x00}); got != "" {
		t.Errorf("短输入 = %q, expected 空", got)
	}
}

func TestDecodeDateTime(t *testing.T) {
	got := decodeDateTime([]byte{0x13, 0x2f, 0x12, 0x1c, 0x06, 0x18})
	if got != "2024-06-28 18:47:19" {
		t.Errorf("decodeDateTime() = %q, expected 2024-06-28 18:47:19", got)
	}
}

func TestRenderValue(t *testing.T) {
	tests := []struct {
		name     string
		format   FieldFormat
		data     []byte
		width    int
		expected any
	}{
		{"零填充字符串", FormatZeroPaddedString, []byte("net\x00\x00"), 0, "net"},
		{"直映射十六进制", FormatDirectMapString, []byte{0x31, 0x40}, 0, "3140"},
		{"ff填充字符串", FormatFFPaddedString, []byte{0x12, 0x34, 0xff, 0xff}, 0, "1234"},
		{"双字节整数单值", FormatDoubleLEInt, []byte{0x40, 0x00}, 0, 64},
		{"双字节整数列表", FormatDoubleLEInt, []byte{0x40, 0x00, 0x01, 0x01}, 0, []int{64, 257}},
		{"单字节整数", FormatInteger, []byte{0x07}, 0, 7},
		{"单字节整数列表", FormatInteger, []byte{0x01, 0x02}, 0, []int{1, 2}},
		{"整数空输入", FormatInteger, nil, 0, nil},
		{"ASCII", FormatString, []byte("JS703646"), 0, "JS703646"},
		{"空格填充字符串", FormatSpacePaddedString, []byte("Loft     "), 0, "Loft"},
		{"定宽字符串表", FormatSpacePaddedStringList, []byte("Front Door      Garage          "), 16, []string{"Front Door", "Garage"}},
		{"定宽字符串表单项", FormatSpacePaddedStringList, []byte("Kitchen\x00        "), 16, "Kitchen"},
		{"未知格式退回十六进制", FieldFormat(99), []byte{0xde, 0xad}, 0, "de ad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderValue(tt.format, tt.data, tt.width)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("renderValue() = %#v, expected %#v", got, tt.expected)
			}
		})
	}
}

func TestDecode24_PanelStatus(t *testing.T) {
	// 实抓单分区状态数据
	flat := []byte{
		0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x13, 0x2f, 0x12, 0x1c, 0x06, 0x18, 0x14, 0x06,
		0x01, 0x00, 0x83, 0x00, 0x00,
	}
	chunks := []Chunk{{Kind: KindBytes, Index: 255, Length: len(flat), Units: splitUnits(flat, 1)}}

	data, err := decode24(nil, chunks)
	if err != nil {
		t.Fatalf("decode24() error = %v", err)
	}
	status, ok := data.(PanelStatus)
	if !ok {
		t.Fatalf("data type = %T, expected PanelStatus", data)
	}
	if status.DateTime != "2024-06-28 18:47:19" {
		t.Errorf("DateTime = %q", status.DateTime)
	}
	if status.Partitions != 1 {
		t.Errorf("Partitions = %d, expected 1", status.Partitions)
	}
	p1, ok := status.States[1]
	if !ok {
		t.Fatal("缺少分区 1")
	}
	if p1.State != "Disarmed" {
		t.Errorf("State = %q, expected Disarmed", p1.State)
	}
	if !p1.Ready || !p1.AlarmInMemory || !p1.AlarmEvent {
		t.Errorf("状态位错误：%+v", p1)
	}
	if p1.Trouble || p1.Bypass || p1.Last10Secs || p1.ZoneEvent || p1.StatusChanged {
		t.Errorf("应为 0 的状态位被置位：%+v", p1)
	}
}

func TestDecode2A_EventLog(t *testing.T) {
	entry := []byte{0x00, 0x00, 0x00, 0x66, 0x03, 0x05, 0x00, 0x51, 0x00, 0x75}
	chunks := []Chunk{{Kind: KindWord80, Index: 255, Length: 10, Units: [][]byte{entry}}}

	data, err := decode2A(nil, chunks)
	if err != nil {
		t.Fatalf("decode2A() error = %v", err)
	}
	events := data.([]LogEntry)
	if len(events) != 1 {
		t.Fatalf("events = %d, expected 1", len(events))
	}
	e := events[0]
	if e.Time != "2024-03-24 10:27:12" {
		t.Errorf("Time = %q", e.Time)
	}
	if e.Device != "ZONES" {
		t.Errorf("Device = %q, expected ZONES", e.Device)
	}
	// 防区设备的防区号按 1 基修正
	if e.Zone != 6 {
		t.Errorf("Zone = %d, expected 6", e.Zone)
	}
	if e.Event != "Arm Home" {
		t.Errorf("Event = %q, expected Arm Home", e.Event)
	}
}

func TestDecode2A_PanelDeviceKeepsZone(t *testing.T) {
	entry := []byte{0x00, 0x00, 0x00, 0x66, 0x0c, 0x00, 0x00, 0x32, 0x00, 0x75}
	chunks := []Chunk{{Kind: KindWord80, Index: 255, Length: 10, Units: [][]byte{entry}}}

	data, _ := decode2A(nil, chunks)
	e := data.([]LogEntry)[0]
	if e.Device != "PANEL" || e.Zone != 0 {
		t.Errorf("entry = %+v, expected PANEL 防区 0", e)
	}
}

func TestDecode3D_ZoneTemps(t *testing.T) {
	units := [][]byte{{0xa1}, {0xff}, {0x00}}
	chunks := []Chunk{{Kind: KindBytes, Index: int(IndexZones), Length: 3, Units: units}}

	data, err := decode3D(nil, chunks)
	if err != nil {
		t.Fatalf("decode3D() error = %v", err)
	}
	temps := data.(map[string]map[int]float64)["ZONES"]
	if got := temps[1]; got != 40.0 {
		t.Errorf("防区 1 温度 = %v, expected 40.0", got)
	}
	if _, ok := temps[2]; ok {
		t.Error("0xFF 不应产生温度读数")
	}
	if got := temps[3]; got != -40.5 {
		t.Errorf("防区 3 温度 = %v, expected -40.5", got)
	}
}

func TestDecode4B_ZoneLastEvents(t *testing.T) {
	units := [][]byte{
		{0x00, 0x00, 0x00, 0x66, 0x02},
		{0x00, 0x00, 0x00, 0x66, 0x03},
	}
	chunks := []Chunk{{Kind: KindWord40, Index: int(IndexZones), Length: 10, Units: units}}

	data, err := decode4B(nil, chunks)
	if err != nil {
		t.Fatalf("decode4B() error = %v", err)
	}
	events := data.(map[int]ZoneEvent)
	if events[1].Status != "CLOSED" || events[2].Status != "MOTION" {
		t.Errorf("events = %+v", events)
	}
	if events[1].Time != "2024-03-24 10:27:12" {
		t.Errorf("Time = %q", events[1].Time)
	}
}

func TestDecode17_RequestList(t *testing.T) {
	chunks := []Chunk{{Kind: KindBytes, Index: 255, Length: 3, Units: splitUnits([]byte{0x18, 0x24, 0x4b}, 1)}}

	data, err := decode17(nil, chunks)
	if err != nil {
		t.Fatalf("decode17() error = %v", err)
	}
	entries := data.([]RequestListEntry)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, expected 3", len(entries))
	}
	if entries[0].Name != "SENSOR_DETECTION" || entries[1].Name != "PANEL_STATUS" || entries[2].Name != "ZONE_LAST_EVENT" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestDecode1F_DeviceTypes(t *testing.T) {
	chunks := []Chunk{{Kind: KindBytes, Index: int(IndexZones), Length: 4, Units: splitUnits([]byte{0x29, 0x00, 0x35, 0xfe}, 1)}}

	data, err := decode1F(nil, chunks)
	if err != nil {
		t.Fatalf("decode1F() error = %v", err)
	}
	devices := data.(map[int]DeviceTypeEntry)
	if devices[1].Name != "MC-302V PG2" || devices[1].Kind != "MAGNET" {
		t.Errorf("防区 1 = %+v", devices[1])
	}
	if _, ok := devices[2]; ok {
		t.Error("空位 0x00 不应产生条目")
	}
	if devices[3].Kind != "SHOCK" {
		t.Errorf("防区 3 = %+v", devices[3])
	}
	if devices[4].Name != "Wired" {
		t.Errorf("防区 4 = %+v", devices[4])
	}
}

func TestDecode22_Capabilities(t *testing.T) {
	data22 := []byte{0x08, 0x00, 0x00, 0x00, 0x02, 0x00, 0x40, 0x00}
	chunks := []Chunk{{Kind: KindWord16, Index: 255, Length: 8, Units: splitUnits(data22, 2)}}

	data, err := decode22(nil, chunks)
	if err != nil {
		t.Fatalf("decode22() error = %v", err)
	}
	caps := data.(map[string]int)
	if caps["REPEATERS"] != 8 || caps["X10"] != 0 || caps["SIRENS"] != 2 || caps["ZONES"] != 64 {
		t.Errorf("caps = %+v", caps)
	}
}

func TestDecode52_DeviceCounts(t *testing.T) {
	// 实抓：19 08 00 02 01 01
	flat := []byte{0x19, 0x08, 0x00, 0x02, 0x01, 0x01}
	chunks := []Chunk{{Kind: KindBytes, Index: 255, Length: 6, Units: splitUnits(flat, 1)}}

	data, err := decode52(nil, chunks)
	if err != nil {
		t.Fatalf("decode52() error = %v", err)
	}
	counts := data.(DeviceCounts)
	expected := DeviceCounts{Unknown: 25, Sensors: 8, Keypads: 0, Keyfobs: 2, Sirens: 1, PGMs: 1}
	if counts != expected {
		t.Errorf("counts = %+v, expected %+v", counts, expected)
	}
}

func TestDecode77_ZoneBrightness(t *testing.T) {
	units := [][]byte{{0x00}, {0x01}, {0x02}, {0xff}}
	chunks := []Chunk{{Kind: KindBytes, Index: int(IndexZones), Length: 4, Units: units}}

	data, err := decode77(nil, chunks)
	if err != nil {
		t.Fatalf("decode77() error = %v", err)
	}
	zones := data.(map[string]map[int]string)["ZONES"]
	if zones[1] != "DARKNESS" || zones[2] != "PARTIAL_LIGHT" || zones[3] != "DAYLIGHT" {
		t.Errorf("zones = %+v", zones)
	}
	if _, ok := zones[4]; ok {
		t.Error("0xFF 不应产生读数")
	}
}

func TestDecodeKnownSetting_Capabilities(t *testing.T) {
	// 容量表与通用索引表不同：14 为 EVENTS、15 为 PARTITIONS
	data := make([]byte, 32)
	data[28] = 0xf4
	data[29] = 0x01 // 下标 14 = 500
	data[30] = 0x03 // 下标 15 = 3

	value, handled := decodeKnownSetting(0x0007, data)
	if !handled {
		t.Fatal("capabilities 未命中专有解码")
	}
	caps := value.(map[string]int)
	if caps["EVENTS"] != 500 {
		t.Errorf("EVENTS = %d, expected 500", caps["EVENTS"])
	}
	if caps["PARTITIONS"] != 3 {
		t.Errorf("PARTITIONS = %d, expected 3", caps["PARTITIONS"])
	}
}

func TestDecodeKnownSetting_UserCodes(t *testing.T) {
	value, handled := decodeKnownSetting(0x0008, []byte{0x12, 0x34, 0x00, 0x00, 0x56, 0x78})
	if !handled {
		t.Fatal("user codes 未命中专有解码")
	}
	codes := value.(map[int]string)
	if codes[1] != "1234" || codes[3] != "5678" {
		t.Errorf("codes = %+v", codes)
	}
	if _, ok := codes[2]; ok {
		t.Error("空码 0000 不应产生条目")
	}
}

func TestDecodeKnownSetting_ZoneTypes(t *testing.T) {
	value, handled := decodeKnownSetting(0x0031, []byte{0x00, 0x0b, 0x07, 0xaa})
	if !handled {
		t.Fatal("zone types 未命中专有解码")
	}
	types := value.([]string)
	if !reflect.DeepEqual(types, []string{"Non-Alarm", "Fire", "Perimeter"}) {
		t.Errorf("types = %v", types)
	}
}

func TestDecodeKnownSetting_DHCP(t *testing.T) {
	data := []byte{
		0x19, 0x21, 0x68, 0x00, 0x11, 0x00,
		0x25, 0x52, 0x55, 0x25, 0x50, 0x00,
		0x19, 0x21, 0x68, 0x00, 0x10, 0x01,
	}
	value, handled := decodeKnownSetting(0x0154, data)
	if !handled {
		t.Fatal("dhcp 未命中专有解码")
	}
	info := value.(DHCPInfo)
	if info.IP != "192.168.001.100" {
		t.Errorf("IP = %q", info.IP)
	}
	if info.Subnet != "255.255.255.000" {
		t.Errorf("Subnet = %q", info.Subnet)
	}
	if info.Gateway != "192.168.001.001" {
		t.Errorf("Gateway = %q", info.Gateway)
	}
}

func TestDecodeKnownSetting_NameLists(t *testing.T) {
	value, handled := decodeKnownSetting(0x0045, []byte("Attic\nBack door \n\nBasement"))
	if !handled {
		t.Fatal("name list 未命中专有解码")
	}
	names := value.([]string)
	if !reflect.DeepEqual(names, []string{"Attic", "Back door", "Basement"}) {
		t.Errorf("names = %v", names)
	}
}

func TestDecodeKnownSetting2_Strings(t *testing.T) {
	units := [][]byte{[]byte("internet\x00\x00"), []byte("apn2\x00")}
	value, handled := decodeKnownSetting2(0x0080, units)
	if !handled {
		t.Fatal("gprs apn 未命中专有解码")
	}
	if !reflect.DeepEqual(value, []any{"internet", "apn2"}) {
		t.Errorf("value = %#v", value)
	}

	phones, handled := decodeKnownSetting2(0x00A5, [][]byte{{0x44, 0x77, 0x12, 0xff, 0xff}})
	if !handled {
		t.Fatal("phone numbers 未命中专有解码")
	}
	if phones != any("447712") {
		t.Errorf("phones = %#v", phones)
	}
}

func TestDecodeGeneric(t *testing.T) {
	chunks := []Chunk{{Kind: KindWord16, Index: 3, Length: 4, Units: [][]byte{{0x01, 0x02}, {0x03, 0x04}}}}
	data, err := decodeGeneric(nil, chunks)
	if err != nil {
		t.Fatalf("decodeGeneric() error = %v", err)
	}
	out := data.([]GenericChunk)
	if len(out) != 1 {
		t.Fatalf("chunks = %d, expected 1", len(out))
	}
	if out[0].Type != "WORD16" || out[0].IndexName != "ZONES" {
		t.Errorf("chunk = %+v", out[0])
	}
	if !reflect.DeepEqual(out[0].Data, []string{"01 02", "03 04"}) {
		t.Errorf("Data = %v", out[0].Data)
	}
}
