// Package sqlitetest opens isolated in-memory SQLite databases for tests.
package sqlitetest

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/anoixa/picshare/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Open 返回已迁移的内存数据库，每个测试使用独立的库名
func Open(t testing.TB) *database.GormProvider {
	t.Helper()
	return OpenNamed(t, "")
}

// OpenNamed 同一测试需要多个库时用 suffix 区分
func OpenNamed(t testing.TB, suffix string) *database.GormProvider {
	t.Helper()

	name := unsafeChars.ReplaceAllString(t.Name()+suffix, "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// 单连接避免 shared cache 下的表锁冲突
	sqlDB.SetMaxOpenConns(1)

	provider := database.NewProviderFromDB(db, "sqlite")
	if err := database.Migrate(provider); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return provider
}
