package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Provider 对象存储网关
// DeleteObjects 幂等：不存在的 key 视为删除成功
type Provider interface {
	// PutObject 上传对象并返回公开访问 URL
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// DeleteObjects 批量删除，部分失败时返回 *BatchError
	DeleteObjects(ctx context.Context, keys []string) error

	// Exists 检查对象是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string

	// MaxDeleteBatch 单次 DeleteObjects 允许的最大 key 数
	MaxDeleteBatch() int
}

// KeyError 单个 key 的删除失败
type KeyError struct {
	Key string
	Err error
}

// BatchError 批量删除中失败的 key
type BatchError struct {
	Failed []KeyError
}

func (e *BatchError) Error() string {
	if len(e.Failed) == 0 {
		return "batch delete failed"
	}
	first := e.Failed[0]
	if len(e.Failed) == 1 {
		return fmt.Sprintf("failed to delete %s: %v", first.Key, first.Err)
	}
	return fmt.Sprintf("failed to delete %d objects, first %s: %v", len(e.Failed), first.Key, first.Err)
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

// FailedKeys 返回失败的 key 列表
func (e *BatchError) FailedKeys() []string {
	keys := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		keys[i] = f.Key
	}
	return keys
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
