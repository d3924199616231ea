// Package lifecycle marks expired albums and purges them once the grace period
// has passed, removing stored blobs before the database rows.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anoixa/picshare/cache"
	"github.com/anoixa/picshare/database/repo/albums"
	"github.com/anoixa/picshare/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrSweepInProgress 上一次清理尚未结束
var ErrSweepInProgress = errors.New("sweep already in progress")

// AlbumStore 清理所需的相册数据访问
type AlbumStore interface {
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	CountMarkable(ctx context.Context, now time.Time) (int64, error)
	ListPurgeCandidates(ctx context.Context, cutoff time.Time) ([]albums.PurgeRow, error)
	PreviewPurgeCandidates(ctx context.Context, cutoff time.Time) ([]albums.PurgeRow, error)
	DeleteExpired(ctx context.Context, id uint, cutoff time.Time) (bool, error)
}

// BlobDeleter 对象存储批量删除
type BlobDeleter interface {
	DeleteObjects(ctx context.Context, keys []string) error
}

// CacheEvicter 缓存失效
type CacheEvicter interface {
	Delete(ctx context.Context, key string) error
}

// Options 清理参数
type Options struct {
	GracePeriod  time.Duration
	BatchSize    int
	DeleteRPS    float64
	PurgeWorkers int
	MaxDuration  time.Duration
	DryRun       bool
	// Now 为空时使用 time.Now
	Now func() time.Time
}

// Sweeper 相册过期清理器，同一时刻只允许一次清理
type Sweeper struct {
	store   AlbumStore
	blobs   BlobDeleter
	cache   CacheEvicter
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
	running *atomic.Bool
}

// NewSweeper 创建清理器，evicter 可以为 nil
func NewSweeper(store AlbumStore, blobs BlobDeleter, evicter CacheEvicter, opts Options, logger *zap.Logger) *Sweeper {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PurgeWorkers < 1 {
		opts.PurgeWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.DeleteRPS > 0 {
		limit = rate.Limit(opts.DeleteRPS)
	}

	return &Sweeper{
		store:   store,
		blobs:   blobs,
		cache:   evicter,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		running: new(atomic.Bool),
	}
}

// WithDryRun 返回共享运行标志与限速器的副本，副本与原清理器互斥
func (s *Sweeper) WithDryRun(dryRun bool) *Sweeper {
	cp := *s
	cp.opts.DryRun = dryRun
	return &cp
}

// Run 执行一次清理并吞掉错误与 panic，供调度器调用
func (s *Sweeper) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sweep panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	if _, err := s.Sweep(ctx); err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.logger.Warn("previous sweep still running, skipping")
			return
		}
		s.logger.Error("sweep failed", zap.Error(err))
	}
}

// Sweep 依次执行标记、候选查询、删除对象、删除行
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	if s.opts.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.MaxDuration)
		defer cancel()
	}

	start := time.Now()
	report := &Report{StartedAt: s.opts.Now().UTC(), DryRun: s.opts.DryRun}
	err := s.sweep(ctx, report)
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}

	if report.Aborted {
		s.logger.Warn("sweep aborted before completion", report.Fields()...)
	} else {
		s.logger.Info("sweep completed", report.Fields()...)
	}
	return report, nil
}

func (s *Sweeper) sweep(ctx context.Context, report *Report) error {
	now := report.StartedAt

	var err error
	if s.opts.DryRun {
		report.Marked, err = s.store.CountMarkable(ctx, now)
	} else {
		report.Marked, err = s.store.MarkExpired(ctx, now)
	}
	if err != nil {
		return fmt.Errorf("mark phase: %w", err)
	}

	cutoff := now.Add(-s.opts.GracePeriod)
	var rows []albums.PurgeRow
	if s.opts.DryRun {
		// 未真正标记，需要把本次会被标记的相册也算进来
		rows, err = s.store.PreviewPurgeCandidates(ctx, cutoff)
	} else {
		rows, err = s.store.ListPurgeCandidates(ctx, cutoff)
	}
	if err != nil {
		return fmt.Errorf("select purge candidates: %w", err)
	}

	plan := newPurgePlan(rows)
	report.Candidates = len(plan.albumIDs)
	report.BlobsRequested = len(plan.keys)

	if report.Candidates == 0 {
		s.logger.Debug("no albums due for purge", zap.Time("cutoff", cutoff))
		return nil
	}
	if s.opts.DryRun {
		return nil
	}

	s.deleteBlobs(ctx, plan.keys, report)
	if ctx.Err() != nil {
		report.Aborted = true
		return nil
	}

	s.purgeRows(ctx, plan, cutoff, report)
	return nil
}

// purgePlan 去重后的待清理相册与对象 key
type purgePlan struct {
	albumIDs   []uint
	shareCodes map[uint]string
	keys       []string
}

func newPurgePlan(rows []albums.PurgeRow) *purgePlan {
	plan := &purgePlan{shareCodes: make(map[uint]string)}
	keys := make([]string, 0, len(rows)*2)
	for _, row := range rows {
		if _, ok := plan.shareCodes[row.AlbumID]; !ok {
			plan.shareCodes[row.AlbumID] = row.ShareCode
			plan.albumIDs = append(plan.albumIDs, row.AlbumID)
		}
		if row.OSSKey.Valid {
			keys = append(keys, row.OSSKey.String)
		}
		if row.ThumbnailOSSKey.Valid {
			keys = append(keys, row.ThumbnailOSSKey.String)
		}
	}
	plan.keys = storage.DedupeKeys(keys)
	return plan
}

// deleteBlobs 分批删除对象，失败只记录日志
func (s *Sweeper) deleteBlobs(ctx context.Context, keys []string, report *Report) {
	batches := storage.Chunk(keys, s.opts.BatchSize)
	for i, batch := range batches {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		report.BlobBatches++
		err := s.blobs.DeleteObjects(ctx, batch)
		if err == nil {
			report.BlobsDeleted += len(batch)
			continue
		}

		report.BlobBatchesFailed++
		failed := len(batch)
		var batchErr *storage.BatchError
		if errors.As(err, &batchErr) && len(batchErr.Failed) < failed {
			failed = len(batchErr.Failed)
		}
		report.BlobsDeleted += len(batch) - failed

		s.logger.Warn("blob batch delete failed",
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
			zap.Int("size", len(batch)),
			zap.Int("failed", failed),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			return
		}
	}
}

// purgeRows 逐个删除相册行，单个失败不影响其他相册
func (s *Sweeper) purgeRows(ctx context.Context, plan *purgePlan, cutoff time.Time, report *Report) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.opts.PurgeWorkers)

	for _, id := range plan.albumIDs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			deleted, err := s.store.DeleteExpired(ctx, id, cutoff)

			mu.Lock()
			switch {
			case err != nil:
				report.AlbumsFailed++
				s.logger.Error("failed to purge album", zap.Uint("album_id", id), zap.Error(err))
			case !deleted:
				// 查询之后被续期
				report.AlbumsSkipped++
				s.logger.Info("album no longer due for purge, skipped", zap.Uint("album_id", id))
			default:
				report.AlbumsDeleted++
			}
			mu.Unlock()

			if deleted {
				s.evict(ctx, plan.shareCodes[id])
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		report.Aborted = true
	}
}

func (s *Sweeper) evict(ctx context.Context, shareCode string) {
	if s.cache == nil || shareCode == "" {
		return
	}
	if err := s.cache.Delete(ctx, cache.PublicAlbum.Build(shareCode)); err != nil {
		s.logger.Warn("failed to evict album cache", zap.String("share_code", shareCode), zap.Error(err))
	}
}
