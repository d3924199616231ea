package cache

import "strings"

// Namespace 所有缓存键的公共前缀，与其他服务共用 redis 时避免冲突
const Namespace = "picshare"

// KeyBuilder 缓存键构建器，格式为 picshare:<prefix>:<part>...
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder 创建新的键构建器
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{prefix: Namespace + ":" + prefix}
}

// Build 构建缓存键
func (kb *KeyBuilder) Build(parts ...string) string {
	if len(parts) == 0 {
		return kb.prefix
	}
	return kb.prefix + ":" + strings.Join(parts, ":")
}

var (
	// PublicAlbum 按分享码缓存的公开相册视图
	PublicAlbum = NewKeyBuilder("public_album")
	// Dashboard 管理后台统计
	Dashboard = NewKeyBuilder("dashboard")
)
