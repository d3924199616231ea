package repositories

import (
	"github.com/anoixa/picshare/database"
	"github.com/anoixa/picshare/database/repo/albums"
	"github.com/anoixa/picshare/database/repo/dashboard"
	"github.com/anoixa/picshare/database/repo/photos"
	"github.com/anoixa/picshare/database/repo/users"
)

// Repositories 集中管理所有数据库仓库
type Repositories struct {
	Users  *users.Repository
	Albums *albums.Repository
	Photos *photos.Repository

	Dashboard *dashboard.Repository
}

// NewRepositories 创建所有仓库实例
func NewRepositories(provider database.Provider) *Repositories {
	return &Repositories{
		Users:  users.NewRepository(provider),
		Albums: albums.NewRepository(provider),
		Photos: photos.NewRepository(provider),

		Dashboard: dashboard.NewRepository(provider),
	}
}
