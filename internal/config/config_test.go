package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "mode: standalone\n"))
	require.NoError(t, err)
	require.Equal(t, ModeStandalone, cfg.Mode)
	require.Equal(t, ":5001", cfg.Panel.Addr)
	require.Equal(t, 120*time.Second, cfg.Panel.WatchdogTimeout)
	require.Equal(t, 30*time.Second, cfg.Panel.KeepaliveInterval)
	require.Equal(t, 3, cfg.Logging.MessageLevel)
	require.Equal(t, 5.0, cfg.Injector.LineRate)
	require.Equal(t, 1024, cfg.Injector.MaxLineBytes)
	require.True(t, cfg.Metrics.Enable)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
mode: proxy
upstream:
  addr: "10.0.0.9:5001"
  dialTimeout: 3s
panel:
  addr: ":15001"
  keepaliveEnable: false
logging:
  messageLevel: 5
`))
	require.NoError(t, err)
	require.Equal(t, ModeProxy, cfg.Mode)
	require.Equal(t, "10.0.0.9:5001", cfg.Upstream.Addr)
	require.Equal(t, 3*time.Second, cfg.Upstream.DialTimeout)
	require.Equal(t, ":15001", cfg.Panel.Addr)
	require.False(t, cfg.Panel.KeepaliveEnable)
	require.Equal(t, 5, cfg.Logging.MessageLevel)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VISONIC_PANEL_ADDR", ":16001")
	cfg, err := Load(writeConfig(t, "mode: standalone\n"))
	require.NoError(t, err)
	require.Equal(t, ":16001", cfg.Panel.Addr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	// 显式给出的路径读不到必须报错，不能静默回退默认值
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"未知模式", "mode: tunnel\n"},
		{"proxy缺上游地址", "mode: proxy\nupstream:\n  addr: \"\"\n"},
		{"报文日志级别越界", "mode: standalone\nlogging:\n  messageLevel: 9\n"},
		{"webhook缺URL", "mode: standalone\nevents:\n  webhook:\n    enable: true\n    url: \"\"\n"},
		{"redis缺地址", "mode: standalone\nevents:\n  redis:\n    enable: true\n    addr: \"\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
		})
	}
}
