package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 配置结构
type WebDAVConfig struct {
	URL       string
	Username  string
	Password  string
	RootPath  string
	PublicURL string
	Timeout   time.Duration
}

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client    *gowebdav.Client
	baseURL   string
	rootPath  string
	publicURL string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者并验证连接
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	s := &WebDAVStorage{
		client:   client,
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		rootPath: rootPath,
	}
	s.publicURL = cfg.PublicURL
	if s.publicURL == "" {
		s.publicURL = s.baseURL + rootPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Health(ctx); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}
	return s, nil
}

// runWithContext gowebdav 不接受 context，在 goroutine 中执行并等待取消
func runWithContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + key
	}
	return "/" + key
}

// ensureParentDir 逐级创建父目录
func (s *WebDAVStorage) ensureParentDir(ctx context.Context, fullPath string) error {
	parentDir := path.Dir(fullPath)
	if parentDir == "/" || parentDir == "." {
		return nil
	}

	currentPath := ""
	for _, part := range strings.Split(strings.Trim(parentDir, "/"), "/") {
		if part == "" {
			continue
		}
		currentPath = currentPath + "/" + part

		p := currentPath
		err := runWithContext(ctx, func() error {
			return s.client.Mkdir(p, os.FileMode(0755))
		})
		if err != nil && !isCollectionExistsError(err) {
			return fmt.Errorf("failed to create directory %s: %w", p, err)
		}
	}
	return nil
}

// isCollectionExistsError 判断是否为目录已存在的错误
func isCollectionExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	for _, s := range []string{"already exists", "conflict", "Conflict", "409", "Method Not Allowed", "405"} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// PutObject 保存文件到 WebDAV
func (s *WebDAVStorage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	fullPath := s.fullPath(key)

	if err := s.ensureParentDir(ctx, fullPath); err != nil {
		return "", fmt.Errorf("failed to ensure parent directory for %s: %w", key, err)
	}

	err := runWithContext(ctx, func() error {
		return s.client.WriteStream(fullPath, r, 0644)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", key, err)
	}
	return joinURL(s.publicURL, key), nil
}

// DeleteObjects 逐个删除，WebDAV 没有批量删除接口
func (s *WebDAVStorage) DeleteObjects(ctx context.Context, keys []string) error {
	var failed []KeyError
	for _, key := range keys {
		fullPath := s.fullPath(key)
		err := runWithContext(ctx, func() error {
			return s.client.Remove(fullPath)
		})
		if err != nil && !gowebdav.IsErrNotFound(err) {
			failed = append(failed, KeyError{Key: key, Err: err})
		}
	}
	if len(failed) > 0 {
		return &BatchError{Failed: failed}
	}
	return nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, key string) (bool, error) {
	fullPath := s.fullPath(key)
	exists := false
	err := runWithContext(ctx, func() error {
		_, err := s.client.Stat(fullPath)
		if err == nil {
			exists = true
			return nil
		}
		if gowebdav.IsErrNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Health 读取根目录验证连接
func (s *WebDAVStorage) Health(ctx context.Context) error {
	root := s.rootPath
	if root == "" {
		root = "/"
	}
	return runWithContext(ctx, func() error {
		_, err := s.client.ReadDir(root)
		return err
	})
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}

// MaxDeleteBatch 单批 key 数只影响日志粒度
func (s *WebDAVStorage) MaxDeleteBatch() int {
	return 100
}
