package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anoixa/picshare/api/common"
	"github.com/anoixa/picshare/internal/lifecycle"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Sweeper 一次清理
type Sweeper interface {
	Sweep(ctx context.Context) (*lifecycle.Report, error)
}

// SweeperFactory 按 dry-run 标志创建清理器
type SweeperFactory func(dryRun bool) Sweeper

// SweepHandler 管理员手动触发过期相册清理
type SweepHandler struct {
	newSweeper SweeperFactory
	logger     *zap.Logger
}

// NewSweepHandler 创建清理处理器
func NewSweepHandler(factory SweeperFactory, logger *zap.Logger) *SweepHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepHandler{
		newSweeper: factory,
		logger:     logger,
	}
}

// RunSweep 同步执行一次清理并返回报告
// 已有清理在运行时返回 409
func (h *SweepHandler) RunSweep(c *gin.Context) {
	dryRun := false
	if v := c.Query("dry_run"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "dry_run must be a boolean")
			return
		}
		dryRun = parsed
	}

	// 清理不跟随请求取消，由清理器自身的超时约束
	report, err := h.newSweeper(dryRun).Sweep(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		if errors.Is(err, lifecycle.ErrSweepInProgress) {
			common.RespondError(c, http.StatusConflict, "A sweep is already running")
			return
		}
		h.logger.Error("manual sweep failed", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "Sweep failed")
		return
	}

	common.RespondSuccessMessage(c, "Sweep completed", report)
}
