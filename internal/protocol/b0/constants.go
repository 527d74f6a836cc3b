package b0

import "fmt"

// FinalPage 末页标记：RESPONSE 报文的页号字节固定为 0xFF
const FinalPage = 0xFF

// MsgType B0 报文类型（帧内偏移 2）
type MsgType byte

const (
	MsgAdd           MsgType = 0 // 写入/登记
	MsgRequest       MsgType = 1 // 请求
	MsgPagedResponse MsgType = 2 // 分页响应（非末页）
	MsgResponse      MsgType = 3 // 响应（单页或末页）
	MsgRemove        MsgType = 4 // 删除/注销
	MsgUnknown       MsgType = 5
)

func (t MsgType) String() string {
	switch t {
	case MsgAdd:
		return "ADD"
	case MsgRequest:
		return "REQUEST"
	case MsgPagedResponse:
		return "PAGED_RESPONSE"
	case MsgResponse:
		return "RESPONSE"
	case MsgRemove:
		return "REMOVE"
	case MsgUnknown:
		return "UNKNOWN"
	}
	return fmt.Sprintf("UNKNOWN-%d", byte(t))
}

// DataKind 数据块粒度：数值即单元位宽（BITS=1、BYTES=8、WORD16=16 …）
type DataKind int

const (
	KindUnknown DataKind = 0
	KindBits    DataKind = 1
	KindNibble  DataKind = 4
	KindBytes   DataKind = 8
	KindWord16  DataKind = 16
	KindWord24  DataKind = 24
	KindWord32  DataKind = 32
	KindWord40  DataKind = 40
	KindWord48  DataKind = 48
	KindWord56  DataKind = 56
	KindWord64  DataKind = 64
	KindWord72  DataKind = 72
	KindWord80  DataKind = 80
	KindWord88  DataKind = 88
	KindWord96  DataKind = 96
	KindWord104 DataKind = 104
	KindWord112 DataKind = 112
)

var dataKindNames = map[DataKind]string{
	KindUnknown: "UNKNOWN",
	KindBits:    "BITS",
	KindNibble:  "NIBBLE",
	KindBytes:   "BYTES",
	KindWord16:  "WORD16",
	KindWord24:  "WORD24",
	KindWord32:  "WORD32",
	KindWord40:  "WORD40",
	KindWord48:  "WORD48",
	KindWord56:  "WORD56",
	KindWord64:  "WORD64",
	KindWord72:  "WORD72",
	KindWord80:  "WORD80",
	KindWord88:  "WORD88",
	KindWord96:  "WORD96",
	KindWord104: "WORD104",
	KindWord112: "WORD112",
}

func (k DataKind) String() string {
	if name, ok := dataKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN-%d", int(k))
}

// UnitSize 单元字节数：max(1, 位宽/8)
func (k DataKind) UnitSize() int {
	n := int(k) / 8
	if n < 1 {
		return 1
	}
	return n
}

// FieldFormat 配置项值的渲染格式（0x35/0x42 响应）
type FieldFormat int

const (
	FormatZeroPaddedString      FieldFormat = 0  // \x00 填充 ASCII
	FormatDirectMapString       FieldFormat = 1  // 原样 16 进制
	FormatFFPaddedString        FieldFormat = 2  // 16 进制去 ff 填充
	FormatDoubleLEInt           FieldFormat = 3  // 2 字节小端整数（可为列表）
	FormatInteger               FieldFormat = 4  // 1 字节整数（可为列表）
	FormatString                FieldFormat = 6  // ASCII
	FormatSpacePaddedString     FieldFormat = 8  // 空格填充 ASCII
	FormatSpacePaddedStringList FieldFormat = 10 // 定宽字符串表（默认 16 字符）
)

var fieldFormatNames = map[FieldFormat]string{
	FormatZeroPaddedString:      "ZERO_PADDED_STRING",
	FormatDirectMapString:       "DIRECT_MAP_STRING",
	FormatFFPaddedString:        "FF_PADDED_STRING",
	FormatDoubleLEInt:           "DOUBLE_LE_INT",
	FormatInteger:               "INTEGER",
	FormatString:                "STRING",
	FormatSpacePaddedString:     "SPACE_PADDED_STRING",
	FormatSpacePaddedStringList: "SPACE_PADDED_STRING_LIST",
}

func (f FieldFormat) String() string {
	if name, ok := fieldFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN-%d", int(f))
}

// IndexName 设备索引：数据块 index 字节标识的实体类别
type IndexName int

const (
	IndexRepeaters  IndexName = 0
	IndexX10        IndexName = 1
	IndexSirens     IndexName = 2
	IndexZones      IndexName = 3
	IndexKeypads    IndexName = 4
	IndexKeyfobs    IndexName = 5
	IndexUserCodes  IndexName = 6
	IndexCamerasA   IndexName = 7
	IndexPowerlink  IndexName = 9
	IndexTags       IndexName = 10
	IndexCamerasB   IndexName = 11
	IndexPanel      IndexName = 12
	IndexPartitions IndexName = 14
	IndexEvents     IndexName = 17
	IndexNA         IndexName = 255
)

var indexNames = map[IndexName]string{
	0:   "REPEATERS",
	1:   "X10",
	2:   "SIRENS",
	3:   "ZONES",
	4:   "KEYPADS",
	5:   "KEYFOBS",
	6:   "USERCODES",
	7:   "CAMERASA",
	8:   "UNK8",
	9:   "POWERLINK",
	10:  "TAGS",
	11:  "CAMERASB",
	12:  "PANEL",
	13:  "UNK13",
	14:  "PARTITIONS",
	15:  "UNK15",
	16:  "UNK16",
	17:  "EVENTS",
	18:  "UKN18",
	19:  "UNK19",
	20:  "UNK20",
	255: "NA",
}

func (i IndexName) String() string {
	if name, ok := indexNames[i]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN-%d", int(i))
}

// capabilityIndexName 0x35 配置项 07 00（CAPABILITIES）的索引表。
// 与 IndexName 不同：EVENTS=14、PARTITIONS=15。
var capabilityIndexNames = map[int]string{
	0:  "REPEATERS",
	1:  "X10",
	2:  "SIRENS",
	3:  "ZONES",
	4:  "KEYPADS",
	5:  "KEYFOBS",
	6:  "USERCODES",
	7:  "CAMERASA",
	8:  "UNK8",
	9:  "POWERLINK",
	10: "TAGS",
	11: "CAMERASB",
	12: "PANEL",
	13: "UNK13",
	14: "EVENTS",
	15: "PARTITIONS",
	16: "UNK16",
	17: "UNK17",
	18: "UKN18",
	19: "UNK19",
}

func capabilityIndexName(i int) string {
	if name, ok := capabilityIndexNames[i]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN-%d", i)
}

// ZoneStatus 防区最近事件码（0x4B）
type ZoneStatus int

const (
	ZoneStatusNA      ZoneStatus = 0
	ZoneStatusOpen    ZoneStatus = 1
	ZoneStatusClosed  ZoneStatus = 2
	ZoneStatusMotion  ZoneStatus = 3
	ZoneStatusCheckIn ZoneStatus = 4
)

func (s ZoneStatus) String() string {
	switch s {
	case ZoneStatusNA:
		return "NA"
	case ZoneStatusOpen:
		return "OPEN"
	case ZoneStatusClosed:
		return "CLOSED"
	case ZoneStatusMotion:
		return "MOTION"
	case ZoneStatusCheckIn:
		return "CHECKIN"
	}
	return fmt.Sprintf("UNKNOWN-%d", int(s))
}

// ZoneBrightness 防区光照档位（0x77）
type ZoneBrightness int

const (
	BrightnessDarkness     ZoneBrightness = 0
	BrightnessPartialLight ZoneBrightness = 1
	BrightnessDaylight     ZoneBrightness = 2
)

func (b ZoneBrightness) String() string {
	switch b {
	case BrightnessDarkness:
		return "DARKNESS"
	case BrightnessPartialLight:
		return "PARTIAL_LIGHT"
	case BrightnessDaylight:
		return "DAYLIGHT"
	}
	return fmt.Sprintf("UNKNOWN-%d", int(b))
}

// ArmMode 布撤防指令码（A1 命令）
type ArmMode byte

const (
	ArmDisarm        ArmMode = 0x00
	ArmExitDelayHome ArmMode = 0x01
	ArmExitDelayAway ArmMode = 0x02
	ArmEntryDelay    ArmMode = 0x03
	ArmHome          ArmMode = 0x04
	ArmAway          ArmMode = 0x05
	ArmWalkTest      ArmMode = 0x06
	ArmUserTest      ArmMode = 0x07
	ArmInstantHome   ArmMode = 0x14
	ArmInstantAway   ArmMode = 0x15
)

var armModeNames = map[ArmMode]string{
	ArmDisarm:        "DISARM",
	ArmExitDelayHome: "EXIT_DELAY_ARM_HOME",
	ArmExitDelayAway: "EXIT_DELAY_ARM_AWAY",
	ArmEntryDelay:    "ENTRY_DELAY",
	ArmHome:          "ARM_HOME",
	ArmAway:          "ARM_AWAY",
	ArmWalkTest:      "WALK_TEST",
	ArmUserTest:      "USER_TEST",
	ArmInstantHome:   "ARM_INSTANT_HOME",
	ArmInstantAway:   "ARM_INSTANT_AWAY",
}

func (m ArmMode) String() string {
	if name, ok := armModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN-%02x", byte(m))
}

// SensorKind 探测器类别
type SensorKind int

const (
	SensorMotion      SensorKind = 0
	SensorMagnet      SensorKind = 1
	SensorCamera      SensorKind = 2
	SensorWired       SensorKind = 3
	SensorSmoke       SensorKind = 4
	SensorFlood       SensorKind = 5
	SensorGas         SensorKind = 6
	SensorVibration   SensorKind = 7
	SensorShock       SensorKind = 8
	SensorTemperature SensorKind = 9
	SensorSound       SensorKind = 10
)

func (k SensorKind) String() string {
	switch k {
	case SensorMotion:
		return "MOTION"
	case SensorMagnet:
		return "MAGNET"
	case SensorCamera:
		return "CAMERA"
	case SensorWired:
		return "WIRED"
	case SensorSmoke:
		return "SMOKE"
	case SensorFlood:
		return "FLOOD"
	case SensorGas:
		return "GAS"
	case SensorVibration:
		return "VIBRATION"
	case SensorShock:
		return "SHOCK"
	case SensorTemperature:
		return "TEMPERATURE"
	case SensorSound:
		return "SOUND"
	}
	return fmt.Sprintf("UNKNOWN-%d", int(k))
}

// SensorModel 探测器型号条目（0x1F 设备类型码 -> 型号）
type SensorModel struct {
	Name string
	Kind SensorKind
}

var sensorModels = map[byte]SensorModel{
	0x01: {"Next PG2", SensorMotion},
	0x03: {"Clip PG2", SensorMotion},
	0x04: {"Next CAM PG2", SensorCamera},
	0x05: {"GB-502 PG2", SensorSound},
	0x06: {"TOWER-32AM PG2", SensorMotion},
	0x07: {"TOWER-32AMK9", SensorMotion},
	0x0A: {"TOWER CAM PG2", SensorCamera},
	0x0C: {"MP-802 PG2", SensorMotion},
	0x0F: {"MP-902 PG2", SensorMotion},
	0x15: {"SMD-426 PG2", SensorSmoke},
	0x16: {"SMD-429 PG2", SensorSmoke},
	0x18: {"GSD-442 PG2", SensorSmoke},
	0x19: {"FLD-550 PG2", SensorFlood},
	0x1A: {"TMD-560 PG2", SensorTemperature},
	0x1E: {"SMD-429 PG2", SensorSmoke},
	0x29: {"MC-302V PG2", SensorMagnet},
	0x2A: {"MC-302 PG2", SensorMagnet},
	0x2C: {"MC-303V PG2", SensorMagnet},
	0x2D: {"MC-302V PG2", SensorMagnet},
	0x35: {"SD-304 PG2", SensorShock},
	0xFE: {"Wired", SensorWired},
}

// SensorModelFor 按设备类型码查探测器型号
func SensorModelFor(code byte) (SensorModel, bool) {
	m, ok := sensorModels[code]
	return m, ok
}

// zoneTypeNames 防区类型表（0x35 配置项 31 00）
var zoneTypeNames = []string{
	"Non-Alarm",
	"Emergency",
	"Flood",
	"Gas",
	"Delay 1",
	"Delay 2",
	"Interior-Follow",
	"Perimeter",
	"Perimeter-Follow",
	"24 Hours Silent",
	"24 Hours Audible",
	"Fire",
	"Interior",
	"Home Delay",
	"Temperature",
	"Outdoor",
	"16",
}

// ZoneTypeName 防区类型名，越界返回 UNKNOWN
func ZoneTypeName(code int) string {
	if code >= 0 && code < len(zoneTypeNames) {
		return zoneTypeNames[code]
	}
	return "UNKNOWN"
}

// systemStatusNames 分区状态表（0x24 状态字节）
var systemStatusNames = []string{
	"Disarmed",
	"ExitDelay_ArmHome",
	"ExitDelay_ArmAway",
	"EntryDelay",
	"Stay",
	"Armed",
	"UserTest",
	"Downloading",
	"Programming",
	"Installer",
	"Home Bypass",
	"Away Bypass",
	"Ready",
	"NotReady",
	"??",
	"??",
	"Disarm",
	"ExitDelay",
	"ExitDelay",
	"EntryDelay",
	"StayInstant",
	"ArmedInstant",
	"??",
	"??",
	"??",
	"??",
	"??",
	"??",
	"??",
	"??",
	"??",
	"??",
}

// SystemStatusName 分区状态名，越界返回 UNKNOWN-<n>
func SystemStatusName(code int) string {
	if code >= 0 && code < len(systemStatusNames) {
		return systemStatusNames[code]
	}
	return fmt.Sprintf("UNKNOWN-%d", code)
}

// eventNames 面板事件表（0x2A/0x36 日志事件码）
var eventNames = []string{
	"None",
	// 1
	"Interior Alarm",
	"Perimeter Alarm",
	"Delay Alarm",
	"24h Silent Alarm",
	"24h Audible Alarm",
	"Tamper",
	"Control Panel Tamper",
	"Tamper Alarm",
	"Tamper Alarm",
	"Communication Loss",
	"Panic From Keyfob",
	"Panic From Control Panel",
	"Duress",
	"Confirm Alarm",
	"General Trouble",
	"General Trouble Restore",
	"Interior Restore",
	"Perimeter Restore",
	"Delay Restore",
	"24h Silent Restore",
	// 21
	"24h Audible Restore",
	"Tamper Restore",
	"Control Panel Tamper Restore",
	"Tamper Restore",
	"Tamper Restore",
	"Communication Restore",
	"Cancel Alarm",
	"General Restore",
	"Trouble Restore",
	"Not used",
	"Recent Close",
	"Fire",
	"Fire Restore",
	"Not Active",
	"Emergency",
	"Remove User",
	"Disarm Latchkey",
	"Confirm Alarm Emergency",
	"Supervision (Inactive)",
	"Supervision Restore (Active)",
	"Low Battery",
	"Low Battery Restore",
	"AC Fail",
	"AC Restore",
	"Control Panel Low Battery",
	"Control Panel Low Battery Restore",
	"RF Jamming",
	"RF Jamming Restore",
	"Communications Failure",
	"Communications Restore",
	// 51
	"Telephone Line Failure",
	"Telephone Line Restore",
	"Auto Test",
	"Fuse Failure",
	"Fuse Restore",
	"Keyfob Low Battery",
	"Keyfob Low Battery Restore",
	"Engineer Reset",
	"Battery Disconnect",
	"1-Way Keypad Low Battery",
	"1-Way Keypad Low Battery Restore",
	"1-Way Keypad Inactive",
	"1-Way Keypad Restore Active",
	"Low Battery Ack",
	"Clean Me",
	"Fire Trouble",
	"Low Battery",
	"Battery Restore",
	"AC Fail",
	"AC Restore",
	"Supervision (Inactive)",
	"Supervision Restore (Active)",
	"Gas Alert",
	"Gas Alert Restore",
	"Gas Trouble",
	"Gas Trouble Restore",
	"Flood Alert",
	"Flood Alert Restore",
	"X-10 Trouble",
	"X-10 Trouble Restore",
	// 81
	"Arm Home",
	"Arm Away",
	"Quick Arm Home",
	"Quick Arm Away",
	"Disarm",
	"Fail To Auto-Arm",
	"Enter To Test Mode",
	"Exit From Test Mode",
	"Force Arm",
	"Auto Arm",
	"Instant Arm",
	"Bypass",
	"Fail To Arm",
	"Door Open",
	"Communication Established By Control Panel",
	"System Reset",
	"Installer Programming",
	"Wrong Password",
	"Not Sys Event",
	"Not Sys Event",
	// 101
	"Extreme Hot Alert",
	"Extreme Hot Alert Restore",
	"Freeze Alert",
	"Freeze Alert Restore",
	"Human Cold Alert",
	"Human Cold Alert Restore",
	"Human Hot Alert",
	"Human Hot Alert Restore",
	"Temperature Sensor Trouble",
	"Temperature Sensor Trouble Restore",
	"PIR Mask",
	"PIR Mask Restore",
	"Repeater low battery",
	"Repeater low battery restore",
	"Repeater inactive",
	"Repeater inactive restore",
	"Repeater tamper",
	"Repeater tamper restore",
	"Siren test end",
	"Devices test end",
	// 121
	"One way comm. trouble",
	"One way comm. trouble restore",
	"Sensor outdoor alarm",
	"Sensor outdoor restore",
	"Guard sensor alarmed",
	"Guard sensor alarmed restore",
	"Date time change",
	"System shutdown",
	"System power up",
	"Missed Reminder",
	"Pendant test fail",
	"Basic KP inactive",
	"Basic KP inactive restore",
	"Basic KP tamper",
	"Basic KP tamper Restore",
	"Heat",
	"Heat restore",
	"LE Heat Trouble",
	"CO alarm",
	"CO alarm restore",
	// 141
	"CO trouble",
	"CO trouble restore",
	"Exit Installer",
	"Enter Installer",
	"Self test trouble",
	"Self test restore",
	"Confirm panic event",
	"n/a",
	"Soak test fail",
	"Fire Soak test fail",
	"Gas Soak test fail",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
	"n/a",
}

// EventName 事件名，越界返回 UNKNOWN-<n>
func EventName(code int) string {
	if code >= 0 && code < len(eventNames) {
		return eventNames[code]
	}
	return fmt.Sprintf("UNKNOWN-%d", code)
}
