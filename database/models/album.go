package models

import "time"

// Album 共享相册
// 删除行时 photos 与 album_access_logs 通过外键级联删除
type Album struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	ShareCode     string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"share_code"`
	CoverURL      string    `gorm:"type:varchar(1000)" json:"cover_url"`
	PhotoCount    int64     `gorm:"not null;default:0" json:"photo_count"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expires_at"`
	IsExpired     bool      `gorm:"not null;default:false;index" json:"is_expired"`
	ViewCount     int64     `gorm:"not null;default:0" json:"view_count"`
	DownloadCount int64     `gorm:"not null;default:0" json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsExpiredAt 到期时刻本身即视为已过期，与标记阶段的 expires_at <= now 一致
func (a *Album) IsExpiredAt(now time.Time) bool {
	return !a.ExpiresAt.After(now)
}
