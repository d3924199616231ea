package photos

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/picshare/database"
	"github.com/anoixa/picshare/database/models"
	"gorm.io/gorm"
)

// ErrNotFound 照片不存在或不属于该相册
var ErrNotFound = errors.New("photo not found")

// Repository 照片仓库 - 封装所有照片相关的数据库操作
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的照片仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Create 保存照片，并在同一事务中更新相册的照片数与封面
func (r *Repository) Create(ctx context.Context, photo *models.Photo) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(photo).Error; err != nil {
			return fmt.Errorf("failed to create photo in transaction: %w", err)
		}

		updates := map[string]interface{}{
			"photo_count": gorm.Expr("photo_count + ?", 1),
		}
		cover := photo.ThumbnailURL
		if cover == "" {
			cover = photo.OriginalURL
		}
		if err := tx.Model(&models.Album{}).
			Where("id = ? AND (cover_url IS NULL OR cover_url = '')", photo.AlbumID).
			Update("cover_url", cover).Error; err != nil {
			return fmt.Errorf("failed to set album cover: %w", err)
		}
		return tx.Model(&models.Album{}).Where("id = ?", photo.AlbumID).UpdateColumns(updates).Error
	})
}

// ListByAlbum 按排序字段返回相册内的照片
func (r *Repository) ListByAlbum(ctx context.Context, albumID uint) ([]*models.Photo, error) {
	var photos []*models.Photo
	err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("sort_order asc, id asc").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// GetByIDAndAlbum 获取指定相册中的照片
func (r *Repository) GetByIDAndAlbum(ctx context.Context, id, albumID uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).First(&photo, "id = ? AND album_id = ?", id, albumID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// KeysByAlbum 返回相册内所有非空的对象存储 key
func (r *Repository) KeysByAlbum(ctx context.Context, albumID uint) ([]string, error) {
	var rows []models.Photo
	err := r.db.WithContext(ctx).
		Select("oss_key", "thumbnail_oss_key").
		Where("album_id = ?", albumID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keys for album %d: %w", albumID, err)
	}

	keys := make([]string, 0, len(rows)*2)
	for i := range rows {
		keys = append(keys, rows[i].BlobKeys()...)
	}
	return keys, nil
}

// IncrementDownloadCount 下载次数 +1
func (r *Repository) IncrementDownloadCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
}
