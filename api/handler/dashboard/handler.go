package dashboard

import (
	"context"
	"net/http"

	"github.com/anoixa/picshare/api/common"
	svcDashboard "github.com/anoixa/picshare/internal/dashboard"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsService Dashboard 统计服务接口
type StatsService interface {
	GetStats(ctx context.Context) (*svcDashboard.StatsResponse, error)
	RefreshCache(ctx context.Context) error
}

// Handler Dashboard 处理器
type Handler struct {
	svc    StatsService
	logger *zap.Logger
}

// NewHandler 创建新的 Dashboard 处理器
func NewHandler(svc StatsService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// GetStats 获取 Dashboard 统计数据
// GET /api/admin/dashboard/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to get dashboard stats", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "Failed to get dashboard stats")
		return
	}

	common.RespondSuccess(c, stats)
}

// RefreshStats 刷新 Dashboard 统计缓存
// POST /api/admin/dashboard/stats/refresh
func (h *Handler) RefreshStats(c *gin.Context) {
	if err := h.svc.RefreshCache(c.Request.Context()); err != nil {
		h.logger.Error("failed to refresh dashboard stats", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "Failed to refresh stats")
		return
	}

	common.RespondSuccessMessage(c, "Stats refreshed successfully", nil)
}

// RegisterRoutes 注册 Dashboard 路由，调用方负责鉴权
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/dashboard")
	{
		group.GET("/stats", h.GetStats)
		group.POST("/stats/refresh", h.RefreshStats)
	}
}
