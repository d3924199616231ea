package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)
	return s
}

// TestLocalStorage_PathTraversal_Prevention 测试路径遍历防护
func TestLocalStorage_PathTraversal_Prevention(t *testing.T) {
	storage := newTestLocal(t)
	ctx := context.Background()

	traversalAttempts := []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32\\config\\sam",
		"../../.env",
		"..",
		".",
		"",
		"/etc/passwd",
		"folder/../../../etc/passwd",
	}

	for _, attempt := range traversalAttempts {
		t.Run("put_"+attempt, func(t *testing.T) {
			_, err := storage.PutObject(ctx, attempt, strings.NewReader("x"), 1, "text/plain")
			require.Error(t, err, "path traversal attempt should be rejected: %s", attempt)
			assert.Contains(t, err.Error(), "invalid")
		})
	}
}

// TestLocalStorage_PutAndExists 上传后可见，URL 由公开前缀拼接
func TestLocalStorage_PutAndExists(t *testing.T) {
	storage := newTestLocal(t)
	ctx := context.Background()
	key := PhotoKey(1, 2, "abc", "png")

	url, err := storage.PutObject(ctx, key, strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/photos/1/2/abc.png", url)

	exists, err := storage.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(filepath.Join(storage.BasePath(), key))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

// TestLocalStorage_DeleteObjects_Idempotent 删除不存在的文件视为成功
func TestLocalStorage_DeleteObjects_Idempotent(t *testing.T) {
	storage := newTestLocal(t)
	ctx := context.Background()
	keys := []string{PhotoKey(1, 1, "a", "jpg"), ThumbnailKey(1, 1, "a")}

	for _, key := range keys {
		_, err := storage.PutObject(ctx, key, strings.NewReader("data"), 4, "image/jpeg")
		require.NoError(t, err)
	}

	require.NoError(t, storage.DeleteObjects(ctx, keys))
	for _, key := range keys {
		exists, err := storage.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	}

	assert.NoError(t, storage.DeleteObjects(ctx, keys), "second delete must be a no-op")
}

// TestLocalStorage_DeleteObjects_PartialFailure 非法 key 计入 BatchError，其余照常删除
func TestLocalStorage_DeleteObjects_PartialFailure(t *testing.T) {
	storage := newTestLocal(t)
	ctx := context.Background()
	good := PhotoKey(1, 1, "good", "jpg")
	_, err := storage.PutObject(ctx, good, strings.NewReader("data"), 4, "image/jpeg")
	require.NoError(t, err)

	err = storage.DeleteObjects(ctx, []string{"../escape", good})
	require.Error(t, err)

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, []string{"../escape"}, batchErr.FailedKeys())

	exists, err := storage.Exists(ctx, good)
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestLocalStorage_DeleteObjects_CanceledContext 上下文取消后不再删除
func TestLocalStorage_DeleteObjects_CanceledContext(t *testing.T) {
	storage := newTestLocal(t)
	key := PhotoKey(1, 1, "keep", "jpg")
	_, err := storage.PutObject(context.Background(), key, strings.NewReader("data"), 4, "image/jpeg")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = storage.DeleteObjects(ctx, []string{key})
	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.ErrorIs(t, err, context.Canceled)

	exists, err := storage.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalStorage_Health(t *testing.T) {
	storage := newTestLocal(t)
	assert.NoError(t, storage.Health(context.Background()))
	assert.Equal(t, "local", storage.Name())
}
