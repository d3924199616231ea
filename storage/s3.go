package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Config S3 兼容存储的连接参数
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PathStyle       bool
	PublicURL       string
}

// S3Storage AWS S3 及兼容服务的存储实现
type S3Storage struct {
	client     *s3.S3
	uploader   *s3manager.Uploader
	bucketName string
	publicURL  string
}

// NewS3Storage 创建 S3 客户端
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg := &aws.Config{
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(cfg.PathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	client := s3.New(sess)

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = joinURL(cfg.Endpoint, cfg.BucketName)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.BucketName, region)
		}
	}

	return &S3Storage{
		client:     client,
		uploader:   s3manager.NewUploaderWithClient(client),
		bucketName: cfg.BucketName,
		publicURL:  publicURL,
	}, nil
}

// PutObject 通过 s3manager 上传，大文件自动分片
func (s *S3Storage) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         r,
		CacheControl: aws.String("public, max-age=31536000"),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload object '%s' to s3: %w", key, err)
	}
	return joinURL(s.publicURL, key), nil
}

// DeleteObjects 批量删除，逐个 key 的失败从响应的 Errors 中读取
func (s *S3Storage) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]*s3.ObjectIdentifier, len(keys))
	for i, key := range keys {
		objects[i] = &s3.ObjectIdentifier{Key: aws.String(key)}
	}

	out, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucketName),
		Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		failed := make([]KeyError, len(keys))
		for i, key := range keys {
			failed[i] = KeyError{Key: key, Err: err}
		}
		return &BatchError{Failed: failed}
	}

	var failed []KeyError
	for _, e := range out.Errors {
		if aws.StringValue(e.Code) == s3.ErrCodeNoSuchKey {
			continue
		}
		failed = append(failed, KeyError{
			Key: aws.StringValue(e.Key),
			Err: fmt.Errorf("%s: %s", aws.StringValue(e.Code), aws.StringValue(e.Message)),
		})
	}
	if len(failed) > 0 {
		return &BatchError{Failed: failed}
	}
	return nil
}

// Exists 检查对象是否存在
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var reqErr awserr.RequestFailure
		if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object '%s': %w", key, err)
	}
	return true, nil
}

// Health 检查 bucket 是否可访问
func (s *S3Storage) Health(ctx context.Context) error {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucketName)})
	return err
}

// Name 返回存储名称
func (s *S3Storage) Name() string {
	return "s3"
}

// MaxDeleteBatch S3 DeleteObjects 上限为 1000
func (s *S3Storage) MaxDeleteBatch() int {
	return 1000
}
