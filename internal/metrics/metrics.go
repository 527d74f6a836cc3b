package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	PanelAccepted    prometheus.Counter
	PanelBytesIn     prometheus.Counter
	FrameTotal       *prometheus.CounterVec // labels: result=ok|invalid
	FrameResyncTotal prometheus.Counter     // 丢弃垃圾字节后重新对齐的次数
	AckSentTotal     prometheus.Counter
	StdRouteTotal    *prometheus.CounterVec // labels: cmd
	B0RouteTotal     *prometheus.CounterVec // labels: subcmd
	PagedAssembled   prometheus.Counter     // 分页重组完成的逻辑消息数
	PagedFragments   prometheus.Counter     // 收到的分页片段数
	RelayBytes       *prometheus.CounterVec // labels: direction=panel_to_server|server_to_panel
	InjectTotal      *prometheus.CounterVec // labels: result=ok|error
	KeepaliveTotal   prometheus.Counter
	SessionGauge     prometheus.Gauge // 当前活动面板会话数
	WatchdogKills    prometheus.Counter
	EventPushTotal   *prometheus.CounterVec // labels: sink=redis|webhook, result=ok|error
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		PanelAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "panel_accept_total",
			Help: "Total accepted panel TCP connections.",
		}),
		PanelBytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "panel_bytes_received_total",
			Help: "Total bytes received from panels.",
		}),
		FrameTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "powerlink_frame_total",
			Help: "Powerlink frame extraction attempts.",
		}, []string{"result"}),
		FrameResyncTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powerlink_frame_resync_total",
			Help: "Stream resynchronizations after invalid data.",
		}),
		AckSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powerlink_ack_sent_total",
			Help: "Protocol ACK frames sent.",
		}),
		StdRouteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "powerlink_std_route_total",
			Help: "Standard frames routed by command.",
		}, []string{"cmd"}),
		B0RouteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "powerlink_b0_route_total",
			Help: "B0 frames routed by sub-command.",
		}, []string{"subcmd"}),
		PagedAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powerlink_paged_assembled_total",
			Help: "Paged B0 messages fully reassembled.",
		}),
		PagedFragments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powerlink_paged_fragments_total",
			Help: "Paged B0 fragments received.",
		}),
		RelayBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_bytes_total",
			Help: "Bytes relayed between panel and upstream server.",
		}, []string{"direction"}),
		InjectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "injector_commands_total",
			Help: "Injector commands processed.",
		}, []string{"result"}),
		KeepaliveTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "panel_keepalive_sent_total",
			Help: "Keep-alive requests sent to panels.",
		}),
		SessionGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "panel_session_count",
			Help: "Current number of active panel sessions.",
		}),
		WatchdogKills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "panel_watchdog_teardowns_total",
			Help: "Sessions torn down by the inactivity watchdog.",
		}),
		EventPushTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decoded_event_push_total",
			Help: "Decoded events pushed to external sinks.",
		}, []string{"sink", "result"}),
	}
	reg.MustRegister(
		m.PanelAccepted, m.PanelBytesIn, m.FrameTotal, m.FrameResyncTotal,
		m.AckSentTotal, m.StdRouteTotal, m.B0RouteTotal,
		m.PagedAssembled, m.PagedFragments, m.RelayBytes, m.InjectTotal,
		m.KeepaliveTotal, m.SessionGauge, m.WatchdogKills, m.EventPushTotal,
	)
	return m
}
