package database

import (
	"context"
	"fmt"

	"github.com/anoixa/picshare/database/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConflictStrategy 目标库已存在相同主键时的处理方式
type ConflictStrategy string

const (
	ConflictSkip      ConflictStrategy = "skip"
	ConflictOverwrite ConflictStrategy = "overwrite"
	ConflictError     ConflictStrategy = "error"
)

// ParseConflictStrategy 解析 --on-conflict 参数
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case ConflictSkip, ConflictOverwrite, ConflictError:
		return ConflictStrategy(s), nil
	default:
		return "", fmt.Errorf("invalid on-conflict strategy: %s (must be skip, overwrite, or error)", s)
	}
}

// CopyStats 每张表读取的行数
type CopyStats struct {
	Users      int64
	Albums     int64
	Photos     int64
	AccessLogs int64
}

// CopyAll 按外键依赖顺序把 src 的数据复制到 dst，dst 会先迁移表结构
func CopyAll(ctx context.Context, src, dst Provider, batchSize int, strategy ConflictStrategy, log *zap.Logger) (*CopyStats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if err := Migrate(dst); err != nil {
		return nil, err
	}

	stats := &CopyStats{}
	steps := []struct {
		table string
		count *int64
		copy  func() (int64, error)
	}{
		{"users", &stats.Users, func() (int64, error) {
			return copyTable[models.User](ctx, src, dst, batchSize, strategy)
		}},
		{"albums", &stats.Albums, func() (int64, error) {
			return copyTable[models.Album](ctx, src, dst, batchSize, strategy)
		}},
		{"photos", &stats.Photos, func() (int64, error) {
			return copyTable[models.Photo](ctx, src, dst, batchSize, strategy)
		}},
		{"album_access_logs", &stats.AccessLogs, func() (int64, error) {
			return copyTable[models.AlbumAccessLog](ctx, src, dst, batchSize, strategy)
		}},
	}

	for _, step := range steps {
		n, err := step.copy()
		if err != nil {
			return stats, fmt.Errorf("copy %s: %w", step.table, err)
		}
		*step.count = n
		log.Info("table copied", zap.String("table", step.table), zap.Int64("rows", n))
	}
	return stats, nil
}

func copyTable[T any](ctx context.Context, src, dst Provider, batchSize int, strategy ConflictStrategy) (int64, error) {
	var total int64
	var rows []T

	target := func() *gorm.DB {
		tx := dst.WithContext(ctx).Omit(clause.Associations)
		switch strategy {
		case ConflictSkip:
			tx = tx.Clauses(clause.OnConflict{DoNothing: true})
		case ConflictOverwrite:
			tx = tx.Clauses(clause.OnConflict{UpdateAll: true})
		}
		return tx
	}

	result := src.WithContext(ctx).FindInBatches(&rows, batchSize, func(tx *gorm.DB, batch int) error {
		if err := target().Create(&rows).Error; err != nil {
			return fmt.Errorf("batch %d: %w", batch, err)
		}
		total += int64(len(rows))
		return nil
	})
	if result.Error != nil {
		return total, result.Error
	}
	return total, nil
}
