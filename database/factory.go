package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anoixa/picshare/config"
	"github.com/anoixa/picshare/database/models"
	"go.uber.org/zap"
)

// Factory 数据库工厂，负责创建提供者与迁移表结构
type Factory struct {
	provider Provider
	logger   *zap.Logger
}

// NewFactory 创建新的数据库工厂
func NewFactory(cfg *config.Config, log *zap.Logger) (*Factory, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("database")

	provider, err := NewGormProvider(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	log.Info("database provider initialized", zap.String("type", provider.Name()))
	return &Factory{provider: provider, logger: log}, nil
}

// GetProvider 获取数据库提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// AutoMigrate 按依赖顺序迁移：users -> albums -> photos -> access logs
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	f.logger.Info("running database auto migration")
	if err := Migrate(f.provider); err != nil {
		return err
	}
	f.logger.Info("database auto migration completed")
	return nil
}

// Ping 检查数据库连接
func (f *Factory) Ping(ctx context.Context) error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.Ping(ctx)
}

// PoolStats 连接池统计
func (f *Factory) PoolStats() (sql.DBStats, error) {
	if f.provider == nil {
		return sql.DBStats{}, fmt.Errorf("database provider not initialized")
	}
	return f.provider.PoolStats()
}

// Close 关闭数据库连接
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}

// Migrate 创建全部表与外键约束
func Migrate(p Provider) error {
	if err := p.AutoMigrate(
		&models.User{},
		&models.Album{},
		&models.Photo{},
		&models.AlbumAccessLog{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}
