package core

import (
	"net/http"
	"time"

	"github.com/anoixa/picshare/api/handler/admin"
	"github.com/anoixa/picshare/api/middleware"
	"github.com/anoixa/picshare/config"
	"github.com/anoixa/picshare/internal/di"
	"github.com/anoixa/picshare/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxConcurrentRequests 并发请求上限，避免突发流量压垮数据库
const maxConcurrentRequests = 100

// DependenciesFromContainer 从 DI 容器组装路由依赖
func DependenciesFromContainer(c *di.Container) *RouterDependencies {
	deps := &RouterDependencies{
		Config:       c.GetConfig(),
		AlbumService: c.GetAlbumService(),
		Sweepers: func(dryRun bool) admin.Sweeper {
			return c.NewSweeper(dryRun)
		},
		Logger: c.Logger(),
	}
	if f := c.GetDatabaseFactory(); f != nil {
		deps.DB = f
	}
	if svc := c.GetDashboardService(); svc != nil {
		deps.Dashboard = svc
	}
	if p := c.GetCache(); p != nil {
		deps.Cache = p
	}
	if p := c.GetStorage(); p != nil {
		deps.Storage = p
	}
	return deps
}

// NewRouter 创建 gin 引擎并注册全部中间件与路由
func NewRouter(deps *RouterDependencies, localFiles *storage.LocalStorage) *gin.Engine {
	cfg := deps.Config
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(deps.Logger.Named("access")))
	router.Use(cors.New(corsConfig(cfg)))
	_ = router.SetTrustedProxies(nil)

	concurrencyLimiter := middleware.NewConcurrencyLimiter(maxConcurrentRequests, "/health", "/metrics")
	router.Use(concurrencyLimiter.Middleware())

	// 基础监控指标
	router.Use(middleware.Metrics())

	// 本地存储时直接提供照片文件
	if localFiles != nil {
		router.Static(storage.LocalFilesRoute, localFiles.BasePath())
	}

	RegisterRoutes(router, deps)
	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}

// NewServer 创建 http.Server
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
}
