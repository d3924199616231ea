package dashboard

import (
	"context"
	"time"

	"github.com/anoixa/picshare/database"
	"github.com/anoixa/picshare/database/models"
)

// Repository Dashboard 统计仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的 Dashboard 统计仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// OverviewStats 概览统计
type OverviewStats struct {
	AlbumTotal   int64
	PhotoTotal   int64
	UserTotal    int64
	StorageTotal int64
}

// GetOverviewStats 获取概览统计
func (r *Repository) GetOverviewStats(ctx context.Context) (*OverviewStats, error) {
	var result OverviewStats
	db := r.db.WithContext(ctx)

	// 照片总数和存储大小
	err := db.Model(&models.Photo{}).
		Select("COUNT(*) as photo_total, COALESCE(SUM(file_size), 0) as storage_total").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	if err := db.Model(&models.Album{}).Count(&result.AlbumTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&result.UserTotal).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// LifecycleCounts 各生命周期阶段的相册数量
// PendingMark 为已到期但尚未被清理任务标记的相册
type LifecycleCounts struct {
	Active      int64
	PendingMark int64
	InGrace     int64
	DuePurge    int64
}

// GetLifecycleCounts cutoff 为 now 减去宽限期
func (r *Repository) GetLifecycleCounts(ctx context.Context, now, cutoff time.Time) (*LifecycleCounts, error) {
	now, cutoff = now.UTC(), cutoff.UTC()
	var counts LifecycleCounts

	queries := []struct {
		dest  *int64
		where string
		args  []interface{}
	}{
		{&counts.Active, "is_expired = ? AND expires_at > ?", []interface{}{false, now}},
		{&counts.PendingMark, "is_expired = ? AND expires_at <= ?", []interface{}{false, now}},
		{&counts.InGrace, "is_expired = ? AND expires_at > ?", []interface{}{true, cutoff}},
		{&counts.DuePurge, "is_expired = ? AND expires_at <= ?", []interface{}{true, cutoff}},
	}
	for _, q := range queries {
		err := r.db.WithContext(ctx).Model(&models.Album{}).
			Where(q.where, q.args...).
			Count(q.dest).Error
		if err != nil {
			return nil, err
		}
	}
	return &counts, nil
}

// GetUpcomingExpiries 返回 [from, to) 内将要到期的未过期相册的到期时间
func (r *Repository) GetUpcomingExpiries(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var expiries []time.Time
	err := r.db.WithContext(ctx).Model(&models.Album{}).
		Where("is_expired = ? AND expires_at >= ? AND expires_at < ?", false, from.UTC(), to.UTC()).
		Order("expires_at").
		Pluck("expires_at", &expiries).Error
	return expiries, err
}
