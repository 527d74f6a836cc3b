package b0

import "fmt"

// 代码引用到的子命令
const (
	SubInvalidCommand  = 0x06
	SubUnknown0F       = 0x0F
	SubRequestList     = 0x17
	SubSensorDetection = 0x18
	SubDeviceTypes     = 0x1F
	SubCapabilities    = 0x22
	SubPanelStatus     = 0x24
	SubStandardLog     = 0x2A
	SubSettings        = 0x35
	SubLegacyLog       = 0x36
	SubZoneTemps       = 0x3D
	SubSettings2       = 0x42
	SubZoneLastEvent   = 0x4B
	SubAskMe           = 0x51
	SubDeviceCounts    = 0x52
	SubSoftwareVersion = 0x64
	SubKeepAlive       = 0x6A
	SubSomeLog         = 0x75
	SubZoneBrightness  = 0x77
)

// subCmdNames 子命令名称表
var subCmdNames = map[byte]string{
	0x01: "ZONE01",
	0x02: "ZONE02",
	0x04: "ZONE04",
	0x05: "ZONE05",
	0x06: "INVALID_COMMAND",
	0x07: "ZONE07",
	0x0F: "UNKNOWN0F",
	0x11: "ZONES11",
	0x12: "ZONES12",
	0x13: "ZONES13",
	0x14: "ZONES14",
	0x15: "ZONES15",
	0x16: "ZONES16",
	0x17: "REQUEST_LIST",
	0x18: "SENSOR_DETECTION",
	0x19: "BYPASSES",
	0x1D: "ENROLLED",
	0x1F: "DEVICE_TYPES",
	0x21: "ASSIGNED_NAMES",
	0x22: "SYSTEM_CAPABILITIES",
	0x24: "PANEL_STATUS",
	0x27: "CAMERA_SOMETING",
	0x2A: "STANDARD_EVENT_LOG",
	0x2B: "UNKNOWN2B",
	0x2D: "ASSIGNED_ZONE_TYPES",
	0x35: "SETTINGS",
	0x36: "LEGACY_EVENT_LOG",
	0x37: "SOME_EVENT37",
	0x3A: "ZONE3A",
	0x3D: "ZONE_TEMPS",
	0x40: "ZONE40",
	0x42: "SETTINGS2",
	0x43: "ZONE43",
	0x49: "ZONE49",
	0x4B: "ZONE_LAST_EVENT",
	0x4E: "ZONE4E",
	0x4F: "ZONE4F",
	0x50: "ZONE50",
	0x51: "ASK_ME",
	0x52: "DEVICE_COUNTS",
	0x53: "CAMERA_SOMETHING",
	0x59: "GSM_STATUS",
	0x64: "PANEL_SOFTWARE_VERSION",
	0x69: "PANEL_EPROM_AND_SW_VERSION",
	0x6A: "KEEP_ALIVE",
	0x75: "SOME_LOG",
	0x77: "ZONE_BRIGHTNESS",
}

// SubCommandName 子命令名，未知返回 UNKNOWN-<hex>
func SubCommandName(sub byte) string {
	if name, ok := subCmdNames[sub]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN-%02x", sub)
}

// Message B0 报文解码结果。Data 按子命令持有类型化内容，
// 未识别的子命令为 []GenericChunk。
type Message struct {
	Type     string `json:"type"`              // ADD/REQUEST/PAGED_RESPONSE/RESPONSE/REMOVE/UNKNOWN
	Command  string `json:"command"`           // 子命令 16 进制
	Name     string `json:"name"`              // 子命令名
	Params   string `json:"params,omitempty"`  // 配置项 ID（"48 01" 形式）
	Label    string `json:"label,omitempty"`   // 配置项标签
	Page     int    `json:"page,omitempty"`    // 分页响应页号
	Length   int    `json:"length"`            // 数据区总长
	Data     any    `json:"data"`              // 解码内容
	Checksum string `json:"checksum"`          // 报文校验和 16 进制
	Verified bool   `json:"verified"`          // 帧标记与校验和是否通过
	Partial  bool   `json:"partial,omitempty"` // 仍在分页缓冲中
}

// SubCmd 子命令字节（Command 的数值形式）
func (m *Message) SubCmd() byte {
	var b byte
	fmt.Sscanf(m.Command, "%02x", &b)
	return b
}

// GenericChunk 通用解码输出的数据块
type GenericChunk struct {
	Type      string   `json:"type"`     // 数据粒度名
	Index     int      `json:"idx"`      // 设备索引
	IndexName string   `json:"idx_name"` // 设备索引名
	Length    int      `json:"len"`
	Data      []string `json:"data"` // 单元 16 进制
}

// PartitionState 0x24 分区状态位
type PartitionState struct {
	State         string `json:"State"`
	Ready         bool   `json:"Ready"`
	AlarmInMemory bool   `json:"Alarm in Memory"`
	Trouble       bool   `json:"Trouble"`
	Bypass        bool   `json:"Bypass"`
	Last10Secs    bool   `json:"Last 10 Secs"`
	ZoneEvent     bool   `json:"Zone Event"`
	StatusChanged bool   `json:"Status Changed"`
	AlarmEvent    bool   `json:"Alarm Event"`
}

// PanelStatus 0x24 面板状态
type PanelStatus struct {
	DateTime   string                 `json:"datetime"`
	Partitions int                    `json:"partitions"`
	States     map[int]PartitionState `json:"states"`
}

// LogEntry 0x2A/0x36 事件日志条目
type LogEntry struct {
	Time   string `json:"dt"`
	Device string `json:"device"`
	Zone   int    `json:"zone"`
	Event  string `json:"event"`
}

// SettingsValue 0x35/0x42 配置项值
type SettingsValue struct {
	Length   int    `json:"length"`
	ID       string `json:"config"`
	Label    string `json:"config_str"`
	DataType string `json:"data_type"`
	Value    any    `json:"data"`
}

// ZoneEvent 0x4B 防区最近事件
type ZoneEvent struct {
	Time   string `json:"datetime"`
	Status string `json:"code"`
}

// DeviceCounts 0x52 设备数量
type DeviceCounts struct {
	Unknown int
	Sensors int
	Keypads int
	Keyfobs int
	Sirens  int
	PGMs    int
}

// TimedEntry 0x75 日志条目
type TimedEntry struct {
	Time string `json:"dt"`
	Rest string `json:"rest"`
}

// RequestListEntry 0x17 响应清单条目
type RequestListEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DeviceTypeEntry 0x1F 防区设备型号
type DeviceTypeEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// DHCPInfo 0x35 配置项 54 01
type DHCPInfo struct {
	IP      string `json:"IP"`
	Subnet  string `json:"Subnet"`
	Gateway string `json:"Gateway"`
}
