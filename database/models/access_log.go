package models

import "time"

const (
	AccessActionView     = "view"
	AccessActionDownload = "download"
)

type AlbumAccessLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AlbumID   uint      `gorm:"not null;index" json:"album_id"`
	Album     *Album    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IPAddress string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent string    `gorm:"type:varchar(255)" json:"user_agent"`
	Action    string    `gorm:"type:varchar(20);not null" json:"action"`
	PhotoID   *uint     `json:"photo_id,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (AlbumAccessLog) TableName() string {
	return "album_access_logs"
}
