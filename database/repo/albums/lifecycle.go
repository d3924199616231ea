package albums

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anoixa/picshare/database/models"
)

// PurgeRow 清理候选的一行：相册与其一张照片，无照片时 key 为 NULL
type PurgeRow struct {
	AlbumID         uint           `gorm:"column:album_id"`
	ShareCode       string         `gorm:"column:share_code"`
	OSSKey          sql.NullString `gorm:"column:oss_key"`
	ThumbnailOSSKey sql.NullString `gorm:"column:thumbnail_oss_key"`
}

// MarkExpired 将 expires_at <= now 且未标记的相册标记为过期，返回本次新标记的数量
func (r *Repository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Album{}).
		Where("is_expired = ? AND expires_at <= ?", false, now.UTC()).
		Updates(map[string]interface{}{
			"is_expired": true,
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark expired albums: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountMarkable 统计 MarkExpired 将会标记的数量，不修改数据
func (r *Repository) CountMarkable(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Album{}).
		Where("is_expired = ? AND expires_at <= ?", false, now.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count markable albums: %w", err)
	}
	return count, nil
}

// ListPurgeCandidates 返回已标记且 expires_at <= cutoff 的相册及其照片 key
// 没有照片的相册也会返回一行
func (r *Repository) ListPurgeCandidates(ctx context.Context, cutoff time.Time) ([]PurgeRow, error) {
	return r.listCandidates(ctx, "a.is_expired = ? AND a.expires_at <= ?", true, cutoff.UTC())
}

// PreviewPurgeCandidates 不要求已标记，返回本次清理先标记再清理后会删除的相册
// cutoff 不晚于 now，所以 expires_at <= cutoff 的相册必然会在标记阶段被标记
func (r *Repository) PreviewPurgeCandidates(ctx context.Context, cutoff time.Time) ([]PurgeRow, error) {
	return r.listCandidates(ctx, "a.expires_at <= ?", cutoff.UTC())
}

func (r *Repository) listCandidates(ctx context.Context, where string, args ...interface{}) ([]PurgeRow, error) {
	var rows []PurgeRow
	err := r.db.WithContext(ctx).
		Table("albums AS a").
		Select("a.id AS album_id, a.share_code AS share_code, p.oss_key AS oss_key, p.thumbnail_oss_key AS thumbnail_oss_key").
		Joins("LEFT JOIN photos AS p ON p.album_id = a.id").
		Where(where, args...).
		Order("a.id, p.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list purge candidates: %w", err)
	}
	return rows, nil
}

// DeleteExpired 删除单个相册行，条件与候选查询一致
// 在查询与删除之间被续期的相册不会被删除，此时返回 false
func (r *Repository) DeleteExpired(ctx context.Context, id uint, cutoff time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND is_expired = ? AND expires_at <= ?", id, true, cutoff.UTC()).
		Delete(&models.Album{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete album %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
