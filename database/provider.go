package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// TxFunc 事务函数类型
type TxFunc func(tx *gorm.DB) error

// Provider 仓库层依赖的数据库句柄，sqlite/postgres/mysql 共用
type Provider interface {
	DB() *gorm.DB
	WithContext(ctx context.Context) *gorm.DB
	TransactionWithContext(ctx context.Context, fn TxFunc) error
	AutoMigrate(models ...interface{}) error

	// PoolStats 连接池状态，供健康检查展示
	PoolStats() (sql.DBStats, error)

	Ping(ctx context.Context) error
	Close() error

	// Name 方言名称: sqlite, postgres, mysql
	Name() string
}
