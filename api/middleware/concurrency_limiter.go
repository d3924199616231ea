package middleware

import (
	"net/http"
	"strings"

	"github.com/anoixa/picshare/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter 限制同时处理的请求数，超出时立即返回 503
type ConcurrencyLimiter struct {
	sem    *semaphore.Weighted
	exempt []string
}

// NewConcurrencyLimiter 并发限制器，exemptPrefixes 下的路径不占用名额
func NewConcurrencyLimiter(maxConcurrency int64, exemptPrefixes ...string) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{
		sem:    semaphore.NewWeighted(maxConcurrency),
		exempt: exemptPrefixes,
	}
}

func (cl *ConcurrencyLimiter) isExempt(path string) bool {
	for _, prefix := range cl.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware 返回 Gin 中间件
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 健康检查在高负载下也要能响应
		if cl.isExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		if !cl.sem.TryAcquire(1) {
			c.Header("Retry-After", "1")
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			return
		}
		defer cl.sem.Release(1)

		c.Next()
	}
}
