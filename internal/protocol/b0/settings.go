package b0

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
)

// SettingID 由配置项参数字节 (lo, hi) 组成 16 位 ID
func SettingID(lo, hi byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// FormatSettingID ID 还原为报文参数形式（"55 00"）
func FormatSettingID(id uint16) string {
	return fmt.Sprintf("%02x %02x", byte(id), byte(id>>8))
}

// SettingsTable 配置项标签表。0x35 与 0x42 共用同一 ID 空间，
// 语义近似而不完全相同，区分靠报文的子命令字段。初始化后只读。
type SettingsTable struct {
	labels map[uint16]string
}

// DefaultSettings 返回内置标签表
func DefaultSettings() *SettingsTable {
	labels := make(map[uint16]string, len(defaultLabels))
	for id, name := range defaultLabels {
		labels[id] = name
	}
	return &SettingsTable{labels: labels}
}

// Label 按 ID 查标签，未知返回 Unknown
func (t *SettingsTable) Label(id uint16) string {
	if t != nil {
		if name, ok := t.labels[id]; ok {
			return name
		}
	}
	return "Unknown"
}

// LabelParams 按报文参数字节 (lo, hi) 查标签
func (t *SettingsTable) LabelParams(params []byte) string {
	if len(params) < 2 {
		return "Unknown"
	}
	return t.Label(SettingID(params[0], params[1]))
}

// All 导出全表："lo hi" 形式键 -> 标签
func (t *SettingsTable) All() map[string]string {
	out := make(map[string]string, len(t.labels))
	for id, name := range t.labels {
		out[FormatSettingID(id)] = name
	}
	return out
}

// LabelOverrides 标签覆盖文件：键为 "lo hi" 16 进制参数形式。
// 仅影响解码输出的可读标签，不参与任何控制流。
type LabelOverrides struct {
	Labels map[string]string `yaml:"labels"`
}

// LoadLabelOverrides 读取标签覆盖文件
func LoadLabelOverrides(path string) (*LabelOverrides, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings labels: %w", err)
	}
	var o LabelOverrides
	if err := yaml.Unmarshal(b, &o); err != nil {
		return nil, fmt.Errorf("unmarshal settings labels: %w", err)
	}
	if o.Labels == nil {
		o.Labels = make(map[string]string)
	}
	return &o, nil
}

// Merge 合并覆盖表，键不合法时报错
func (t *SettingsTable) Merge(o *LabelOverrides) error {
	if t == nil || o == nil {
		return nil
	}
	for key, name := range o.Labels {
		b, err := powerlink.ParseHexString(key)
		if err != nil || len(b) != 2 {
			return fmt.Errorf("settings label key %q: want two hex bytes", key)
		}
		t.labels[SettingID(b[0], b[1])] = name
	}
	return nil
}

// defaultLabels 内置配置项标签（ID 为 hi<<8|lo）
var defaultLabels = map[uint16]string{
	0x0000: "COMMS_CS_REC1_ACCT",
	0x0001: "COMMS_CS_REC2_ACCT",
	0x0002: "PANEL_SERIAL_NO",
	0x0003: "COMMS_CS_REC1_IP",
	0x0004: "COMMS_CS_REC1_PORT",
	0x0005: "COMMS_CS_REC2_IP",
	0x0006: "COMMS_CS_REC2_PORT",
	0x0007: "CAPABILITIES",
	0x0008: "USER_CODES",
	0x000D: "ZONE_NAMES",
	0x000F: "DOWNLOAD_CODE",
	0x0024: "PANEL_EPROM_VERSION",
	0x0027: "TYPE_OFFSETS",
	0x0028: "CAPABILITIES2",
	0x002B: "UNKNOWN_SOFTWARE_VERSION",
	0x002C: "PANEL_DEFAULT_VERSION",
	0x002D: "PANEL_SOFTWARE_VERSION",
	0x0030: "PARTITIONS_ENABLED",
	0x0031: "ASSIGNED_ZONE_TYPES",
	0x0032: "ASSIGNED_ZONE_NAMES",
	0x0033: "SOMETHING_ZONES",
	0x0034: "MAP_VALUE",
	0x0035: "MAP_VALUE_2",
	0x0036: "SOMETHING_ZONES_2",
	0x0037: "SOMETHING_32_OF",
	0x0038: "SOMETHING_32_OF_2",
	0x0039: "SOMETHING_8_OF",
	0x003C: "PANEL_HARDWARE_VERSION",
	0x003D: "PANEL_RSU_VERSION",
	0x003E: "PANEL_BOOT_VERSION",
	0x0042: "CUSTOM_ZONE_NAMES",
	0x0045: "ZONE_NAMES2",
	0x0046: "CUSTOM_ZONE_NAMES2",
	0x0047: "H24_TIME_FORMAT",
	0x0048: "US_DATE_FORMAT",
	0x004E: "PARTITIONS",
	0x0054: "INSTALLER_CODE",
	0x0055: "MASTER_CODE",
	0x0056: "GUARD_CODE",
	0x0058: "EXIT_DELAY",
	0x005B: "BYPASS_ARM",
	0x0061: "DURESS_CODE",
	0x0080: "COMMS_GPRS_APN",
	0x0081: "COMMS_GPRS_USER",
	0x0082: "COMMS_GPRS_PWD",
	0x008C: "COMMS_CS_REC1_TELNO",
	0x008D: "COMMS_CS_REC2_TELNO",
	0x008E: "COMMS_CS_REC12_SMS",
	0x00A4: "EMAIL_ADDRESSES",
	0x00A5: "PHONE_NUMBERS",
	0x00A6: "VIEW_ON_DEMAND",
	0x00A7: "VIEW_ON_DEMAND_TIME_WINDOW",
	0x00AE: "DHCP_MODE",
	0x00AF: "POWERLINK_IP",
	0x00B0: "POWERLINK_SUBNET",
	0x00B1: "POWERLINK_GATEWAY",
	0x00E2: "USER_PARTITION_ACCESS",
	0x00E5: "USER_CODES2",
	0x00E8: "PANEL_LANGUAGE",
	0x00E9: "ACCEPTED_CHARS_UPPER",
	0x00EA: "ACCEPTED_CHARS_LOWER",
	0x00EB: "INVESTIGATE_MORE",
	0x0115: "POWERLINK_SW_VERSION",
	0x0118: "EMAIL_REPORTED_EVENTS",
	0x0119: "SMS_REPORTED_EVENTS",
	0x011A: "MMS_REPORTED_EVENTS",
	0x0132: "UNKNOWN_SW_VERSION",
	0x0150: "TROUBLES",
	0x0154: "DHCP_IP",
	0x015B: "KIDS_COME_HOME",
	0x0170: "ENABLE_API",
	0x0171: "PANEL_SERIAL",
	0x0173: "HOME_AUTOMATION_SERVICE",
	0x0174: "ENABLE_SSH",
	0x017B: "MAYBE_MAX_USER_CODES",
	0x0185: "SSL_FOR_IPMP",
	0x0187: "LOG_EMAIL_SEND_NOW",
	0x0189: "UNKNOWN_EMAIL",
	0x018A: "UNKNOWN_PWD",
	0x018D: "DNS_NAME",
	0x018E: "ABORT_TIME",
	0x018F: "ENTRY_DELAY",
	0x019D: "DO_NOT_USE",
	0x01A8: "LOG_FTP_SITE",
	0x01A9: "LOG_FTP_UID",
	0x01AA: "LOG_FTP_PWD",
}
