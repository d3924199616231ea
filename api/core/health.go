package core

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/anoixa/picshare/config"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Pinger 数据库连通性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolReporter 可选实现，提供连接池统计
type PoolReporter interface {
	PoolStats() (sql.DBStats, error)
}

// HealthChecker 缓存与对象存储的健康检查
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db      Pinger
	cache   HealthChecker
	storage HealthChecker
	timeout time.Duration
}

// NewHealthHandler 创建健康检查处理器，未初始化的依赖报告 "not initialized"
func NewHealthHandler(db Pinger, cache, storage HealthChecker) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		storage: storage,
		timeout: 3 * time.Second,
	}
}

// Handle 任一依赖不可用时返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := gin.H{
		"database": checkHealth(ctx, h.db, func(ctx context.Context) error { return h.db.Ping(ctx) }),
		"cache":    checkHealth(ctx, h.cache, func(ctx context.Context) error { return h.cache.Health(ctx) }),
		"storage":  checkHealth(ctx, h.storage, func(ctx context.Context) error { return h.storage.Health(ctx) }),
	}
	httpStatus := http.StatusOK
	status := "ok"
	for _, result := range checks {
		if result != "ok" {
			httpStatus = http.StatusServiceUnavailable
			status = "degraded"
			break
		}
	}

	body := gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.VersionString(),
		"checks":  checks,
	}
	if reporter, ok := h.db.(PoolReporter); ok {
		if stats, err := reporter.PoolStats(); err == nil {
			body["database_pool"] = gin.H{
				"open":       stats.OpenConnections,
				"in_use":     stats.InUse,
				"idle":       stats.Idle,
				"wait_count": stats.WaitCount,
			}
		}
	}

	c.JSON(httpStatus, body)
}

func checkHealth(ctx context.Context, dep interface{}, check func(context.Context) error) string {
	if dep == nil {
		return "not initialized"
	}
	if err := check(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}
