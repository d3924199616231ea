package models

import "time"

const (
	RolePhotographer = "photographer"
	RoleAdmin        = "admin"
)

// User 账号由外部认证服务维护，这里只保存相册归属所需的字段
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Role         string    `gorm:"type:varchar(20);not null;default:photographer" json:"role"`
	AvatarURL    string    `gorm:"type:varchar(500)" json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
