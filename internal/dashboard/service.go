package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/picshare/cache"
	dashboardRepo "github.com/anoixa/picshare/database/repo/dashboard"
	"github.com/anoixa/picshare/utils/format"
	"go.uber.org/zap"
)

// trendDays 到期趋势覆盖未来的天数
const trendDays = 14

// StatsRepository 统计仓库接口
type StatsRepository interface {
	GetOverviewStats(ctx context.Context) (*dashboardRepo.OverviewStats, error)
	GetLifecycleCounts(ctx context.Context, now, cutoff time.Time) (*dashboardRepo.LifecycleCounts, error)
	GetUpcomingExpiries(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// Service Dashboard 统计服务
type Service struct {
	repo        StatsRepository
	cache       cache.Provider
	cacheTTL    time.Duration
	gracePeriod time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// NewService 创建新的 Dashboard 统计服务，cacheProvider 可以为 nil
func NewService(repo StatsRepository, cacheProvider cache.Provider, gracePeriod time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		cache:       cacheProvider,
		cacheTTL:    5 * time.Minute,
		gracePeriod: gracePeriod,
		now:         time.Now,
		logger:      logger,
	}
}

// StatsResponse Dashboard 统计响应
type StatsResponse struct {
	Overview    OverviewStats  `json:"overview"`
	Lifecycle   LifecycleStats `json:"lifecycle"`
	Trend       TrendStats     `json:"trend"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// OverviewStats 概览统计
type OverviewStats struct {
	Albums  CountStats   `json:"albums"`
	Photos  CountStats   `json:"photos"`
	Users   CountStats   `json:"users"`
	Storage StorageStats `json:"storage"`
}

// CountStats 数量统计
type CountStats struct {
	Total int64 `json:"total"`
}

// StorageStats 存储统计
type StorageStats struct {
	TotalSize      int64  `json:"total_size"`
	TotalSizeHuman string `json:"total_size_human"`
}

// LifecycleStats 各阶段相册数量
type LifecycleStats struct {
	Active      int64  `json:"active"`
	PendingMark int64  `json:"pending_mark"`
	InGrace     int64  `json:"in_grace"`
	DuePurge    int64  `json:"due_purge"`
	GracePeriod string `json:"grace_period"`
}

// TrendStats 趋势统计
type TrendStats struct {
	Period string   `json:"period"`
	Dates  []string `json:"dates"`
	Data   []int64  `json:"data"`
}

// GetStats 获取 Dashboard 统计数据
func (s *Service) GetStats(ctx context.Context) (*StatsResponse, error) {
	cacheKey := cache.Dashboard.Build("stats")

	// 尝试从缓存获取
	if s.cache != nil {
		var cached StatsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	now := s.now().UTC()

	overview, err := s.repo.GetOverviewStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview stats: %w", err)
	}

	counts, err := s.repo.GetLifecycleCounts(ctx, now, now.Add(-s.gracePeriod))
	if err != nil {
		return nil, fmt.Errorf("lifecycle stats: %w", err)
	}

	start := startOfDay(now)
	expiries, err := s.repo.GetUpcomingExpiries(ctx, start, start.AddDate(0, 0, trendDays))
	if err != nil {
		return nil, fmt.Errorf("upcoming expiries: %w", err)
	}

	response := &StatsResponse{
		Overview: OverviewStats{
			Albums: CountStats{Total: overview.AlbumTotal},
			Photos: CountStats{Total: overview.PhotoTotal},
			Users:  CountStats{Total: overview.UserTotal},
			Storage: StorageStats{
				TotalSize:      overview.StorageTotal,
				TotalSizeHuman: format.HumanReadableSize(overview.StorageTotal),
			},
		},
		Lifecycle: LifecycleStats{
			Active:      counts.Active,
			PendingMark: counts.PendingMark,
			InGrace:     counts.InGrace,
			DuePurge:    counts.DuePurge,
			GracePeriod: s.gracePeriod.String(),
		},
		Trend:       buildTrendData(expiries, start, trendDays),
		GeneratedAt: now,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}
	return response, nil
}

// RefreshCache 刷新统计数据缓存
func (s *Service) RefreshCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cache.Dashboard.Build("stats"))
}

// buildTrendData 按天统计即将到期的相册，没有数据的天数补0
func buildTrendData(expiries []time.Time, start time.Time, days int) TrendStats {
	dates := make([]string, days)
	data := make([]int64, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		dates[i] = start.AddDate(0, 0, i).Format("2006-01-02")
		index[dates[i]] = i
	}

	for _, t := range expiries {
		if i, ok := index[t.UTC().Format("2006-01-02")]; ok {
			data[i]++
		}
	}

	return TrendStats{
		Period: fmt.Sprintf("next_%dd", days),
		Dates:  dates,
		Data:   data,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
