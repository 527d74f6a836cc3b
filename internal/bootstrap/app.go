package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/visonic-proxy/internal/api"
	cfgpkg "github.com/taoyao-code/visonic-proxy/internal/config"
	"github.com/taoyao-code/visonic-proxy/internal/events"
	"github.com/taoyao-code/visonic-proxy/internal/gateway"
	"github.com/taoyao-code/visonic-proxy/internal/health"
	"github.com/taoyao-code/visonic-proxy/internal/httpserver"
	"github.com/taoyao-code/visonic-proxy/internal/injector"
	"github.com/taoyao-code/visonic-proxy/internal/logging"
	"github.com/taoyao-code/visonic-proxy/internal/metrics"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/session"
	"github.com/taoyao-code/visonic-proxy/internal/tcpserver"
)

// Run 统一启动流程：先装配全部组件，再按依赖顺序启动监听，
// 最后阻塞等待关闭信号并优雅收尾。
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting visonic proxy",
		zap.String("mode", cfg.Mode),
		zap.String("env", cfg.App.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ========== 阶段1: 基础组件 ==========
	reg := metrics.NewRegistry()
	appm := metrics.NewAppMetrics(reg)
	var metricsHandler http.Handler
	if cfg.Metrics.Enable {
		metricsHandler = metrics.Handler(reg)
	}
	wire := logging.NewWireLog(log, cfg.Logging.MessageLevel)
	ready := health.New()

	settings := b0.DefaultSettings()
	if cfg.Settings.LabelsFile != "" {
		if o, err := b0.LoadLabelOverrides(cfg.Settings.LabelsFile); err == nil {
			if err := settings.Merge(o); err != nil {
				log.Warn("merge setting labels failed", zap.Error(err))
			} else {
				log.Info("setting labels loaded", zap.String("path", cfg.Settings.LabelsFile))
			}
		} else {
			log.Warn("load setting labels failed", zap.Error(err))
		}
	}
	log.Info("basic components initialized")

	// ========== 阶段2: 事件输出端 ==========
	fanout := events.NewFanout(events.NewLogSink(wire))

	var redisSink *events.RedisSink
	if cfg.Events.Redis.Enable {
		sink, err := events.NewRedisSink(cfg.Events.Redis, log, appm)
		if err != nil {
			log.Error("redis sink initialization failed", zap.Error(err))
			return err
		}
		redisSink = sink
		defer redisSink.Close()
		fanout.Add(redisSink)
		go redisSink.Run(ctx)
		log.Info("redis event sink started",
			zap.String("addr", cfg.Events.Redis.Addr),
			zap.String("channel", cfg.Events.Redis.Channel))
	}

	if cfg.Events.Webhook.Enable {
		webhookSink := events.NewWebhookSink(cfg.Events.Webhook, log, appm)
		fanout.Add(webhookSink)
		go webhookSink.Run(ctx)
		log.Info("webhook event sink started", zap.String("url", cfg.Events.Webhook.URL))
	}

	// ========== 阶段3: 会话注册表与面板归属策略 ==========
	registry := session.NewRegistry(cfg.Panel.WatchdogTimeout, log)
	registry.SetOnChange(func(count int) { appm.SessionGauge.Set(float64(count)) })
	registry.SetOnTeardown(func(*session.Session) { appm.WatchdogKills.Inc() })
	go registry.Run(ctx, 0)

	var owner gateway.Owner
	switch cfg.Mode {
	case cfgpkg.ModeProxy:
		owner = gateway.NewProxyOwner(cfg.Upstream, settings, wire, log, appm, fanout)
		log.Info("proxy mode: relaying to upstream", zap.String("upstream_addr", cfg.Upstream.Addr))
	default:
		standalone := gateway.NewStandaloneOwner(cfg.Panel, settings, registry, wire, log, appm, fanout)
		go standalone.Run(ctx)
		owner = standalone
		log.Info("standalone mode: answering panels locally")
	}
	gw := gateway.New(ctx, owner, registry, log, fanout)

	panelSrv := tcpserver.New(tcpserver.Config{
		Addr:           cfg.Panel.Addr,
		WriteTimeout:   cfg.Panel.WriteTimeout,
		MaxConnections: cfg.Panel.MaxConnections,
	}, log)
	panelSrv.SetMetricsCallbacks(
		func() { appm.PanelAccepted.Inc() },
		func(n int) { appm.PanelBytesIn.Add(float64(n)) },
	)
	panelSrv.SetConnHandler(gw.OnPanelConn)

	injectSrv := injector.New(cfg.Injector, registry, log, appm, fanout)
	log.Info("gateway assembled")

	// ========== 阶段4: 启动HTTP服务（非阻塞）==========
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler,
		func() bool { return ready.Ready() })

	healthAgg := health.NewAggregator()
	apiHandler := api.NewHandler(registry, settings, injectSrv, log)
	httpSrv.Register(func(r *gin.Engine) {
		api.RegisterRoutes(r, apiHandler, log)
		health.RegisterHTTPRoutes(r, healthAgg)
	})

	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	// ========== 阶段5: 启动TCP监听口 ==========
	if err := panelSrv.Start(); err != nil {
		log.Error("panel listener start failed", zap.Error(err))
		return err
	}
	ready.SetPanelReady(true)
	log.Info("panel listener started", zap.String("addr", cfg.Panel.Addr))

	if err := injectSrv.Start(); err != nil {
		log.Error("injector listener start failed", zap.Error(err))
		return err
	}
	ready.SetInjectorReady(true)
	log.Info("injector listener started", zap.String("addr", cfg.Injector.Addr))

	healthAgg.AddChecker(health.NewCheckFunc("listeners", func(context.Context) health.CheckResult {
		if ready.Ready() {
			return health.CheckResult{Status: health.StatusHealthy, Message: "panel and injector listening"}
		}
		return health.CheckResult{Status: health.StatusUnhealthy, Message: "listeners not started"}
	}))
	healthAgg.AddChecker(health.NewTCPChecker("panel", panelSrv))
	healthAgg.AddChecker(health.NewTCPChecker("injector", injectSrv.TCP()))
	if redisSink != nil {
		healthAgg.AddChecker(health.NewRedisChecker(redisSink))
	}
	log.Info("all services ready, waiting for panels")

	// ========== 阶段6: 等待关闭信号 ==========
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("received shutdown signal, gracefully shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpSrv.Shutdown(shutdownCtx)
	log.Info("http server stopped")

	_ = injectSrv.Shutdown(shutdownCtx)
	log.Info("injector listener stopped")

	_ = panelSrv.Shutdown(shutdownCtx)
	log.Info("panel listener stopped")

	log.Info("shutdown complete")
	return nil
}
