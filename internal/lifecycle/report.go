package lifecycle

import (
	"time"

	"go.uber.org/zap"
)

// Report 一次清理的统计结果
type Report struct {
	StartedAt         time.Time     `json:"started_at"`
	DryRun            bool          `json:"dry_run"`
	Marked            int64         `json:"marked"`
	Candidates        int           `json:"candidates"`
	BlobsRequested    int           `json:"blobs_requested"`
	BlobsDeleted      int           `json:"blobs_deleted"`
	BlobBatches       int           `json:"blob_batches"`
	BlobBatchesFailed int           `json:"blob_batches_failed"`
	AlbumsDeleted     int           `json:"albums_deleted"`
	AlbumsSkipped     int           `json:"albums_skipped"`
	AlbumsFailed      int           `json:"albums_failed"`
	Aborted           bool          `json:"aborted"`
	Duration          time.Duration `json:"duration"`
}

// Fields 以单行结构化日志输出
func (r *Report) Fields() []zap.Field {
	return []zap.Field{
		zap.Time("started_at", r.StartedAt),
		zap.Bool("dry_run", r.DryRun),
		zap.Int64("marked", r.Marked),
		zap.Int("candidates", r.Candidates),
		zap.Int("blobs_requested", r.BlobsRequested),
		zap.Int("blobs_deleted", r.BlobsDeleted),
		zap.Int("blob_batches", r.BlobBatches),
		zap.Int("blob_batches_failed", r.BlobBatchesFailed),
		zap.Int("albums_deleted", r.AlbumsDeleted),
		zap.Int("albums_skipped", r.AlbumsSkipped),
		zap.Int("albums_failed", r.AlbumsFailed),
		zap.Bool("aborted", r.Aborted),
		zap.Duration("duration", r.Duration),
	}
}
