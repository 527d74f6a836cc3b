package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/visonic-proxy/internal/gateway"
	"github.com/taoyao-code/visonic-proxy/internal/injector"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/b0"
	"github.com/taoyao-code/visonic-proxy/internal/protocol/powerlink"
	"github.com/taoyao-code/visonic-proxy/internal/session"
)

// Handler v1 API 处理器：离线解码、会话查询、命令注入、配置项目录
type Handler struct {
	registry *session.Registry
	settings *b0.SettingsTable
	injector *injector.Server
	logger   *zap.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(registry *session.Registry, settings *b0.SettingsTable,
	inj *injector.Server, logger *zap.Logger) *Handler {
	return &Handler{
		registry: registry,
		settings: settings,
		injector: inj,
		logger:   logger,
	}
}

// DecodeRequest 解码请求体
type DecodeRequest struct {
	Frame string `json:"frame" binding:"required"`
}

// Decode 离线解码一条十六进制报文。缺失的定界符与校验和自动补全，
// verified 字段标记补全后的帧是否通过严格校验。
func (h *Handler) Decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := gateway.DecodeHex(h.settings, req.Frame)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Sessions 列出当前活动的面板会话
func (h *Handler) Sessions(c *gin.Context) {
	list := h.registry.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"count":    len(list),
		"sessions": list,
	})
}

// InjectRequest 注入请求体。command 与注入端口的行格式一致：
// B0 短码或末尾 43 的整帧十六进制。
type InjectRequest struct {
	Command string `json:"command" binding:"required"`
}

// Inject 向当前目标面板会话注入一条命令
func (h *Handler) Inject(c *gin.Context) {
	var req InjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	frame, err := h.injector.Inject(req.Command)
	if err != nil {
		if errors.Is(err, injector.ErrNoSession) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"frame": powerlink.HexString(frame)})
}

// Settings 配置项标签目录（含 YAML 覆盖后的结果）
func (h *Handler) Settings(c *gin.Context) {
	labels := h.settings.All()
	c.JSON(http.StatusOK, gin.H{
		"count":    len(labels),
		"settings": labels,
	})
}
