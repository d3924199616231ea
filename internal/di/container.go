package di

import (
	"fmt"

	"github.com/anoixa/picshare/cache"
	"github.com/anoixa/picshare/config"
	"github.com/anoixa/picshare/database"
	"github.com/anoixa/picshare/internal/albums"
	"github.com/anoixa/picshare/internal/dashboard"
	"github.com/anoixa/picshare/internal/lifecycle"
	"github.com/anoixa/picshare/internal/repositories"
	"github.com/anoixa/picshare/storage"
	"go.uber.org/zap"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	logger          *zap.Logger
	databaseFactory *database.Factory
	storage         storage.Provider
	cache           cache.Provider
	repositories    *repositories.Repositories
	albumService    *albums.Service
	sweeper         *lifecycle.Sweeper
	dashboard       *dashboard.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Container{
		config: cfg,
		logger: logger,
	}
}

// Init 初始化所有服务
func (c *Container) Init() error {
	c.logger.Info("initializing DI container")

	if err := c.InitDatabase(); err != nil {
		return err
	}

	// 初始化对象存储
	provider, err := storage.NewFactory(c.config, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storage = provider

	// 初始化缓存
	cacheProvider, err := cache.NewFactory(c.config, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.cache = cacheProvider

	c.albumService = albums.NewService(
		c.repositories.Albums,
		c.repositories.Photos,
		c.repositories.Users,
		c.storage,
		c.cache,
		albums.Config{
			DefaultExpiry:   c.config.AlbumDefaultExpiry,
			MaxExpiry:       c.config.AlbumMaxExpiry,
			MaxActive:       c.config.AlbumMaxActive,
			GracePeriod:     c.config.LifecycleGracePeriod,
			CacheTTL:        c.config.CacheAlbumTTL,
			DeleteBatchSize: c.config.StorageDeleteBatchSize,
			BaseURL:         c.config.BaseURL(),
		},
		c.logger.Named("albums"),
	)

	c.sweeper = lifecycle.NewSweeper(
		c.repositories.Albums,
		c.storage,
		c.cache,
		lifecycle.Options{
			GracePeriod:  c.config.LifecycleGracePeriod,
			BatchSize:    storage.EffectiveBatchSize(c.storage, c.config.StorageDeleteBatchSize),
			DeleteRPS:    c.config.StorageDeleteRPS,
			PurgeWorkers: c.config.LifecyclePurgeWorkers,
			MaxDuration:  c.config.LifecycleMaxSweepDuration,
		},
		c.logger.Named("lifecycle"),
	)

	c.dashboard = dashboard.NewService(
		c.repositories.Dashboard,
		c.cache,
		c.config.LifecycleGracePeriod,
		c.logger.Named("dashboard"),
	)

	c.logger.Info("DI container initialized")
	return nil
}

// InitDatabase 只初始化数据库与仓库，供 migrate 等命令使用
func (c *Container) InitDatabase() error {
	if c.databaseFactory != nil {
		return nil
	}
	factory, err := database.NewFactory(c.config, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.databaseFactory = factory
	c.repositories = repositories.NewRepositories(factory.GetProvider())
	return nil
}

// NewSweeper 返回共享运行标志的清理器，调度任务与手动清理互斥
func (c *Container) NewSweeper(dryRun bool) *lifecycle.Sweeper {
	return c.sweeper.WithDryRun(dryRun)
}

// GetRepositories 获取所有仓库
func (c *Container) GetRepositories() *repositories.Repositories {
	return c.repositories
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetStorage 获取对象存储
func (c *Container) GetStorage() storage.Provider {
	return c.storage
}

// GetCache 获取缓存
func (c *Container) GetCache() cache.Provider {
	return c.cache
}

// GetAlbumService 获取相册服务
func (c *Container) GetAlbumService() *albums.Service {
	return c.albumService
}

// GetDashboardService 获取统计服务
func (c *Container) GetDashboardService() *dashboard.Service {
	return c.dashboard
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Logger 获取根 logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Close 关闭所有服务
func (c *Container) Close() error {
	c.logger.Info("closing DI container")

	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			c.logger.Warn("error closing cache", zap.Error(err))
		}
	}

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			c.logger.Warn("error closing database", zap.Error(err))
		}
	}

	c.logger.Info("DI container closed")
	return nil
}
