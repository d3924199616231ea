package albums

import (
	"context"
	"fmt"

	"github.com/anoixa/picshare/database/models"
)

// CreateAccessLog 记录一次浏览或下载
func (r *Repository) CreateAccessLog(ctx context.Context, log *models.AlbumAccessLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create access log: %w", err)
	}
	return nil
}

// ListAccessLogs 按时间倒序返回相册的访问日志
func (r *Repository) ListAccessLogs(ctx context.Context, albumID uint, limit int) ([]*models.AlbumAccessLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []*models.AlbumAccessLog
	err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
