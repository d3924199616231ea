package storage

import (
	"fmt"

	"github.com/anoixa/picshare/config"
	"go.uber.org/zap"
)

// LocalFilesRoute 本地存储对外提供文件的路由前缀
const LocalFilesRoute = "/files"

// NewFactory 按 storage_type 创建存储提供者
func NewFactory(cfg *config.Config, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("storage")

	var (
		provider Provider
		err      error
	)
	switch cfg.StorageType {
	case "local", "":
		publicURL := cfg.StoragePublicURL
		if publicURL == "" {
			publicURL = cfg.BaseURL() + LocalFilesRoute
		}
		provider, err = NewLocalStorage(cfg.StorageLocalPath, publicURL)
	case "minio":
		provider, err = NewMinioStorage(MinioConfig{
			Endpoint:        cfg.StorageEndpoint,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretAccessKey,
			BucketName:      cfg.StorageBucket,
			UseSSL:          cfg.StorageUseSSL,
			PublicURL:       cfg.StoragePublicURL,
		}, log)
	case "oss":
		provider, err = NewOSSStorage(OSSConfig{
			Endpoint:        cfg.StorageEndpoint,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretAccessKey,
			BucketName:      cfg.StorageBucket,
			PublicURL:       cfg.StoragePublicURL,
		})
	case "s3":
		provider, err = NewS3Storage(S3Config{
			Endpoint:        cfg.StorageEndpoint,
			Region:          cfg.StorageRegion,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretAccessKey,
			BucketName:      cfg.StorageBucket,
			PathStyle:       cfg.StoragePathStyle,
			PublicURL:       cfg.StoragePublicURL,
		})
	case "webdav":
		provider, err = NewWebDAVStorage(WebDAVConfig{
			URL:       cfg.StorageWebDAVURL,
			Username:  cfg.StorageWebDAVUsername,
			Password:  cfg.StorageWebDAVPassword,
			RootPath:  cfg.StorageWebDAVRoot,
			PublicURL: cfg.StoragePublicURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageType, err)
	}

	log.Info("storage provider initialized",
		zap.String("provider", provider.Name()),
		zap.Int("max_delete_batch", provider.MaxDeleteBatch()))
	return provider, nil
}

// EffectiveBatchSize 取配置值与提供者上限中较小的一个
func EffectiveBatchSize(p Provider, configured int) int {
	limit := p.MaxDeleteBatch()
	if configured <= 0 || (limit > 0 && configured > limit) {
		return limit
	}
	return configured
}
