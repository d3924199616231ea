package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSConfig 阿里云 OSS 连接参数
type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// OSSStorage 阿里云 OSS 存储实现
type OSSStorage struct {
	client    *oss.Client
	bucket    *oss.Bucket
	publicURL string
}

// NewOSSStorage 创建 OSS 客户端
func NewOSSStorage(cfg OSSConfig) (*OSSStorage, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("oss endpoint and bucket are required")
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSS bucket '%s': %w", cfg.BucketName, err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = ossBucketURL(cfg.Endpoint, cfg.BucketName)
	}

	return &OSSStorage{client: client, bucket: bucket, publicURL: publicURL}, nil
}

// ossBucketURL 生成 https://{bucket}.{endpoint} 形式的访问域名
func ossBucketURL(endpoint, bucketName string) string {
	host := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.TrimRight(host, "/")
	return fmt.Sprintf("https://%s.%s", bucketName, host)
}

// PutObject 上传对象
func (s *OSSStorage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	options := []oss.Option{
		oss.WithContext(ctx),
		oss.CacheControl("public, max-age=31536000"),
	}
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}
	if size > 0 {
		options = append(options, oss.ContentLength(size))
	}

	if err := s.bucket.PutObject(key, r, options...); err != nil {
		return "", fmt.Errorf("failed to upload object '%s' to oss: %w", key, err)
	}
	return joinURL(s.publicURL, key), nil
}

// errOSSNotDeleted 响应中未列出的 key
var errOSSNotDeleted = errors.New("key missing from oss delete result")

// DeleteObjects 批量删除，OSS 对不存在的 key 同样报告为已删除
// 非 quiet 模式返回逐个 key 的结果，未出现在 DeletedObjects 中的 key 视为失败
func (s *OSSStorage) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	result, err := s.bucket.DeleteObjects(keys, oss.DeleteObjectsQuiet(false), oss.WithContext(ctx))
	if err != nil {
		failed := make([]KeyError, len(keys))
		for i, key := range keys {
			failed[i] = KeyError{Key: key, Err: err}
		}
		return &BatchError{Failed: failed}
	}
	if failed := ossFailedKeys(keys, result.DeletedObjects); len(failed) > 0 {
		return &BatchError{Failed: failed}
	}
	return nil
}

// ossFailedKeys 对比请求与响应，按请求顺序返回未删除的 key
func ossFailedKeys(requested, deleted []string) []KeyError {
	done := make(map[string]struct{}, len(deleted))
	for _, key := range deleted {
		done[key] = struct{}{}
	}
	var failed []KeyError
	for _, key := range requested {
		if _, ok := done[key]; !ok {
			failed = append(failed, KeyError{Key: key, Err: errOSSNotDeleted})
		}
	}
	return failed
}

// Exists 检查对象是否存在
func (s *OSSStorage) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := s.bucket.IsObjectExist(key, oss.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to check object '%s': %w", key, err)
	}
	return exists, nil
}

// Health 检查 bucket 是否存在
func (s *OSSStorage) Health(ctx context.Context) error {
	exists, err := s.client.IsBucketExist(s.bucket.BucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket '%s' does not exist", s.bucket.BucketName)
	}
	return nil
}

// Name 返回存储名称
func (s *OSSStorage) Name() string {
	return "oss"
}

// MaxDeleteBatch OSS DeleteMultipleObjects 上限为 1000
func (s *OSSStorage) MaxDeleteBatch() int {
	return 1000
}
