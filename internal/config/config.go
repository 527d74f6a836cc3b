package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 运行模式
const (
	ModeProxy      = "proxy"
	ModeStandalone = "standalone"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig 运维 HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	Pprof        HTTPPprof     `mapstructure:"pprof"`
}

// HTTPPprof HTTP pprof 配置
type HTTPPprof struct {
	Enable bool   `mapstructure:"enable"`
	Prefix string `mapstructure:"prefix"`
}

// PanelConfig 面板侧 TCP 监听配置
type PanelConfig struct {
	Addr           string        `mapstructure:"addr"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	MaxConnections int           `mapstructure:"maxConnections"`
	// WatchdogTimeout 超过该时长无入站数据则判定面板连接死亡并拆除会话
	WatchdogTimeout time.Duration `mapstructure:"watchdogTimeout"`
	// KeepaliveInterval standalone 模式下出站静默超过该时长即发送保活请求
	KeepaliveInterval time.Duration `mapstructure:"keepaliveInterval"`
	KeepaliveEnable   bool          `mapstructure:"keepaliveEnable"`
}

// UpstreamConfig proxy 模式下真实监控服务器的连接配置
type UpstreamConfig struct {
	Addr        string        `mapstructure:"addr"`
	DialTimeout time.Duration `mapstructure:"dialTimeout"`
}

// InjectorConfig 命令注入监听配置
type InjectorConfig struct {
	Addr           string  `mapstructure:"addr"`
	MaxLineBytes   int     `mapstructure:"maxLineBytes"`
	MaxConnections int     `mapstructure:"maxConnections"`
	LineRate       float64 `mapstructure:"lineRate"`
	LineBurst      int     `mapstructure:"lineBurst"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置。
// MessageLevel 控制协议报文日志的详细程度（1~5，逐级叠加）：
// 1 仅解码结果；2 +原始帧；3 +解码器细节；4 +结构化/分页过程；5 +ACK 与保活噪声。
type LoggingConfig struct {
	Level        string           `mapstructure:"level"`
	Format       string           `mapstructure:"format"`
	MessageLevel int              `mapstructure:"messageLevel"`
	File         LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// RedisEventsConfig 解码事件 Redis 发布配置（瞬态广播，不做持久化）
type RedisEventsConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// WebhookEventsConfig 解码事件 HTTP 推送配置
type WebhookEventsConfig struct {
	Enable     bool          `mapstructure:"enable"`
	URL        string        `mapstructure:"url"`
	Secret     string        `mapstructure:"secret"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"maxRetries"`
	QueueSize  int           `mapstructure:"queueSize"`
}

// EventsConfig 解码结果对外输出配置
type EventsConfig struct {
	Redis   RedisEventsConfig   `mapstructure:"redis"`
	Webhook WebhookEventsConfig `mapstructure:"webhook"`
}

// SettingsConfig 设置项目录的本地覆盖配置
type SettingsConfig struct {
	// LabelsFile 可选 YAML 文件，用于覆盖/补充设置项标签（仅影响可读输出）
	LabelsFile string `mapstructure:"labelsFile"`
}

// Config 顶层配置结构
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Mode     string         `mapstructure:"mode"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Panel    PanelConfig    `mapstructure:"panel"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Injector InjectorConfig `mapstructure:"injector"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Events   EventsConfig   `mapstructure:"events"`
	Settings SettingsConfig `mapstructure:"settings"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 VISONIC_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("VISONIC_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	// 环境变量覆盖：前缀 VISONIC_，并将点号替换为下划线
	v.SetEnvPrefix("VISONIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量；
		// 显式指定的路径读不到则直接报错
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验关键字段，启动期一次性失败优于运行期踩坑
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeProxy:
		if c.Upstream.Addr == "" {
			return fmt.Errorf("config: proxy mode requires upstream.addr")
		}
	case ModeStandalone:
	default:
		return fmt.Errorf("config: unknown mode %q (want %q or %q)", c.Mode, ModeProxy, ModeStandalone)
	}
	if c.Logging.MessageLevel < 1 || c.Logging.MessageLevel > 5 {
		return fmt.Errorf("config: logging.messageLevel %d out of range 1..5", c.Logging.MessageLevel)
	}
	if c.Events.Webhook.Enable && c.Events.Webhook.URL == "" {
		return fmt.Errorf("config: events.webhook.enable requires events.webhook.url")
	}
	if c.Events.Redis.Enable && c.Events.Redis.Addr == "" {
		return fmt.Errorf("config: events.redis.enable requires events.redis.addr")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "visonic-proxy")
	v.SetDefault("app.env", "dev")

	v.SetDefault("mode", ModeStandalone)

	v.SetDefault("http.addr", ":8085")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.pprof.enable", false)
	v.SetDefault("http.pprof.prefix", "/debug/pprof")

	v.SetDefault("panel.addr", ":5001")
	v.SetDefault("panel.writeTimeout", "10s")
	v.SetDefault("panel.maxConnections", 8)
	v.SetDefault("panel.watchdogTimeout", "120s")
	v.SetDefault("panel.keepaliveInterval", "30s")
	v.SetDefault("panel.keepaliveEnable", true)

	v.SetDefault("upstream.addr", "52.58.105.181:5001")
	v.SetDefault("upstream.dialTimeout", "10s")

	v.SetDefault("injector.addr", ":5002")
	v.SetDefault("injector.maxLineBytes", 1024)
	v.SetDefault("injector.maxConnections", 4)
	v.SetDefault("injector.lineRate", 5.0)
	v.SetDefault("injector.lineBurst", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.messageLevel", 3)
	v.SetDefault("logging.file.filename", "logs/visonic-proxy.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("events.redis.enable", false)
	v.SetDefault("events.redis.addr", "localhost:6379")
	v.SetDefault("events.redis.db", 0)
	v.SetDefault("events.redis.channel", "visonic:decoded")
	v.SetDefault("events.webhook.enable", false)
	v.SetDefault("events.webhook.timeout", "5s")
	v.SetDefault("events.webhook.maxRetries", 3)
	v.SetDefault("events.webhook.queueSize", 256)

	v.SetDefault("settings.labelsFile", "")
}
