package lifecycle

import (
	"time"

	"github.com/anoixa/picshare/database/models"
)

// State 相册生命周期状态
type State string

const (
	// StateActive 未到期，可公开访问
	StateActive State = "active"
	// StateExpiredGrace 已到期，数据保留至宽限期结束
	StateExpiredGrace State = "expired_grace"
	// StatePurged 宽限期已过，等待或已经完成清理
	StatePurged State = "purged"
)

// StateOf 计算相册在 now 时刻的状态，两个边界均为闭区间
func StateOf(album *models.Album, now time.Time, grace time.Duration) State {
	if !album.IsExpiredAt(now) {
		return StateActive
	}
	if !PurgeAt(album, grace).After(now) {
		return StatePurged
	}
	return StateExpiredGrace
}

// PurgeAt 返回相册最早可被清理的时刻
func PurgeAt(album *models.Album, grace time.Duration) time.Time {
	return album.ExpiresAt.UTC().Add(grace)
}
