package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可探活的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	db      Pinger
	version string
	started time.Time
	logger  *zap.Logger
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db Pinger, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, version: version, started: time.Now(), logger: logger}
}

// HealthReport 健康检查结果
type HealthReport struct {
	Status        string            `json:"status" example:"ok"`
	Checks        map[string]string `json:"checks"`
	UptimeSeconds int64             `json:"uptime_seconds" example:"3600"`
	Timestamp     string            `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Version       string            `json:"version" example:"1.0.0"`
}

// Health 健康检查
// 任一依赖失败时status为error;HTTP状态码恒为200,由探针读取status字段
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} HealthReport
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	report := HealthReport{
		Status: "ok",
		Checks: map[string]string{"database": "ok"},
	}
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("数据库健康检查失败", zap.Error(err))
		report.Status = "error"
		report.Checks["database"] = "error"
	}

	report.UptimeSeconds = int64(time.Since(h.started).Seconds())
	report.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05Z")
	report.Version = h.version
	c.JSON(http.StatusOK, report)
}
