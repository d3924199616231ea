package models

import "time"

// Photo 相册中的一张照片，原图与缩略图各对应一个对象存储 key
type Photo struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AlbumID         uint      `gorm:"not null;index" json:"album_id"`
	Album           *Album    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	OriginalName    string    `gorm:"type:varchar(255);not null" json:"original_name"`
	OSSKey          string    `gorm:"column:oss_key;type:varchar(500);not null" json:"-"`
	OriginalURL     string    `gorm:"type:varchar(1000);not null" json:"original_url"`
	ThumbnailOSSKey string    `gorm:"column:thumbnail_oss_key;type:varchar(500)" json:"-"`
	ThumbnailURL    string    `gorm:"column:thumbnail_url;type:varchar(1000)" json:"thumbnail_url"`
	FileSize        int64     `gorm:"not null" json:"file_size"`
	MimeType        string    `gorm:"type:varchar(100);not null" json:"mime_type"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	DownloadCount   int64     `gorm:"not null;default:0" json:"download_count"`
	SortOrder       int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt       time.Time `json:"created_at"`
}

// BlobKeys 返回非空的存储 key
func (p *Photo) BlobKeys() []string {
	keys := make([]string, 0, 2)
	if p.OSSKey != "" {
		keys = append(keys, p.OSSKey)
	}
	if p.ThumbnailOSSKey != "" {
		keys = append(keys, p.ThumbnailOSSKey)
	}
	return keys
}
