package albums

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/picshare/database"
	"github.com/anoixa/picshare/database/models"
	"gorm.io/gorm"
)

// ErrNotFound 相册不存在，或不属于当前用户
var ErrNotFound = errors.New("album not found")

// Repository 相册仓库 - 封装所有相册相关的数据库操作
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的相册仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Create 创建相册
func (r *Repository) Create(ctx context.Context, album *models.Album) error {
	if err := r.db.WithContext(ctx).Create(album).Error; err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

// GetByID 通过ID获取相册
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).First(&album, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &album, nil
}

// GetByIDAndUser 获取属于指定用户的相册
func (r *Repository) GetByIDAndUser(ctx context.Context, id, userID uint) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).First(&album, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &album, nil
}

// GetByShareCode 通过分享码获取相册
func (r *Repository) GetByShareCode(ctx context.Context, shareCode string) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).First(&album, "share_code = ?", shareCode).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &album, nil
}

// ListByUser 分页获取用户相册
func (r *Repository) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*models.Album, int64, error) {
	var albums []*models.Album
	var total int64
	db := r.db.WithContext(ctx).Model(&models.Album{}).Where("user_id = ?", userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := db.Order("created_at desc, id desc").Offset(offset).Limit(pageSize).Find(&albums).Error; err != nil {
		return nil, 0, err
	}
	return albums, total, nil
}

// CountActiveByUser 统计用户尚未到期的相册数量
func (r *Repository) CountActiveByUser(ctx context.Context, userID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Album{}).
		Where("user_id = ? AND is_expired = ? AND expires_at > ?", userID, false, now.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active albums: %w", err)
	}
	return count, nil
}

// Update 更新标题与描述
func (r *Repository) Update(ctx context.Context, id, userID uint, title, description *string) (*models.Album, error) {
	updates := map[string]interface{}{}
	if title != nil {
		updates["title"] = *title
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Album{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update album %d: %w", id, result.Error)
		}
	}
	return r.GetByIDAndUser(ctx, id, userID)
}

// ExtendExpiry 设置新的过期时间并清除过期标记
func (r *Repository) ExtendExpiry(ctx context.Context, id, userID uint, expiresAt time.Time) (*models.Album, error) {
	result := r.db.WithContext(ctx).Model(&models.Album{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"expires_at": expiresAt.UTC(),
			"is_expired": false,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to extend album %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByIDAndUser(ctx, id, userID)
}

// IncrementViewCount 浏览次数 +1
func (r *Repository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Album{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// IncrementDownloadCount 下载次数 +1
func (r *Repository) IncrementDownloadCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Album{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
}

// Delete 删除用户自己的相册，照片与访问日志由外键级联删除
func (r *Repository) Delete(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Album{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete album %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
