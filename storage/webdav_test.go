package storage

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"
)

func newTestWebDAV(t *testing.T) *WebDAVStorage {
	t.Helper()
	handler := &webdav.Handler{
		FileSystem: webdav.NewMemFS(),
		LockSystem: webdav.NewMemLS(),
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := NewWebDAVStorage(WebDAVConfig{URL: server.URL})
	require.NoError(t, err)
	return s
}

// TestWebDAVStorageValidation 测试 WebDAV 存储配置验证
func TestWebDAVStorageValidation(t *testing.T) {
	_, err := NewWebDAVStorage(WebDAVConfig{URL: ""})
	assert.Error(t, err)

	_, err = NewWebDAVStorage(WebDAVConfig{URL: "http://127.0.0.1:1"})
	assert.Error(t, err, "unreachable server fails the connection test")
}

// TestWebDAVStorageFullPath 测试路径生成逻辑
func TestWebDAVStorageFullPath(t *testing.T) {
	tests := []struct {
		rootPath string
		key      string
		want     string
	}{
		{"", "photos/1/1/a.jpg", "/photos/1/1/a.jpg"},
		{"/picshare", "photos/1/1/a.jpg", "/picshare/photos/1/1/a.jpg"},
		{"/picshare", "/photos/a.jpg", "/picshare/photos/a.jpg"},
	}
	for _, tt := range tests {
		s := &WebDAVStorage{rootPath: tt.rootPath}
		assert.Equal(t, tt.want, s.fullPath(tt.key))
	}
}

// TestWebDAVStorage_RoundTrip 上传、检查、批量删除、重复删除
func TestWebDAVStorage_RoundTrip(t *testing.T) {
	s := newTestWebDAV(t)
	ctx := context.Background()
	keys := []string{PhotoKey(3, 9, "x", "jpg"), ThumbnailKey(3, 9, "x")}

	for _, key := range keys {
		url, err := s.PutObject(ctx, key, strings.NewReader("bytes"), 5, "image/jpeg")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(url, "/"+key))
	}

	exists, err := s.Exists(ctx, keys[0])
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteObjects(ctx, keys))

	exists, err = s.Exists(ctx, keys[0])
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, s.DeleteObjects(ctx, append(keys, "photos/never/existed.jpg")))
}

func TestWebDAVStorage_CanceledContext(t *testing.T) {
	s := newTestWebDAV(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.DeleteObjects(ctx, []string{"photos/a.jpg"})
	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsCollectionExistsError(t *testing.T) {
	assert.False(t, isCollectionExistsError(nil))
	assert.True(t, isCollectionExistsError(errors.New("Mkdir /a: 405")))
	assert.False(t, isCollectionExistsError(errors.New("permission denied")))
}
