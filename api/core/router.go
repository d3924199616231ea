package core

import (
	"net/http"

	"github.com/anoixa/picshare/api/common"
	"github.com/anoixa/picshare/api/handler/admin"
	handlerDashboard "github.com/anoixa/picshare/api/handler/dashboard"
	handlerAlbums "github.com/anoixa/picshare/api/handler/albums"
	"github.com/anoixa/picshare/api/middleware"
	"github.com/anoixa/picshare/config"
	"github.com/anoixa/picshare/database/models"
	svcAlbums "github.com/anoixa/picshare/internal/albums"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Config       *config.Config
	AlbumService *svcAlbums.Service
	Sweepers     admin.SweeperFactory
	Dashboard    handlerDashboard.StatsService
	DB           Pinger
	Cache        HealthChecker
	Storage      HealthChecker
	Logger       *zap.Logger
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	// 基础路由
	registerBasicRoutes(router, deps)

	// API 路由
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	healthHandler := NewHealthHandler(deps.DB, deps.Cache, deps.Storage)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version":    config.Version,
			"commit":     config.CommitHash,
			"build_time": config.BuildTime,
		})
	})

	router.GET("/metrics", func(context *gin.Context) {
		context.JSON(http.StatusOK, middleware.GetMetrics())
	})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	albumHandler := handlerAlbums.NewHandler(deps.AlbumService, deps.Logger.Named("http"))

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		// 分享链接，无需登录
		albumHandler.RegisterPublicRoutes(apiGroup.Group("/s"))

		authed := apiGroup.Group("")
		authed.Use(middleware.JWTAuth([]byte(deps.Config.JWTSecret)))
		{
			albumHandler.RegisterOwnerRoutes(authed.Group("/albums"))

			if deps.Sweepers != nil {
				registerAdminRoutes(authed, deps)
			}
		}
	}
}

// registerAdminRoutes 注册管理员路由
func registerAdminRoutes(group *gin.RouterGroup, deps *RouterDependencies) {
	sweepHandler := admin.NewSweepHandler(deps.Sweepers, deps.Logger.Named("admin"))
	adminGroup := group.Group("/admin")
	adminGroup.Use(middleware.RequireRole(models.RoleAdmin))
	{
		adminGroup.POST("/sweep", sweepHandler.RunSweep) // POST /api/admin/sweep?dry_run=true
	}

	if deps.Dashboard != nil {
		handlerDashboard.NewHandler(deps.Dashboard, deps.Logger.Named("dashboard")).RegisterRoutes(adminGroup)
	}
}
