package albums

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anoixa/picshare/cache"
	"github.com/anoixa/picshare/database/models"
	"github.com/anoixa/picshare/database/repo/albums"
	"github.com/anoixa/picshare/database/repo/photos"
	"github.com/anoixa/picshare/database/repo/users"
	"github.com/anoixa/picshare/internal/lifecycle"
	"github.com/anoixa/picshare/storage"
	"github.com/anoixa/picshare/utils"
	"go.uber.org/zap"
)

var (
	ErrAlbumNotFound  = errors.New("album not found")
	ErrAlbumExpired   = errors.New("album has expired")
	ErrPhotoNotFound  = errors.New("photo not found")
	ErrInvalidExpiry  = errors.New("invalid expiry")
	ErrInvalidTitle   = errors.New("title is too long")
	ErrTooManyAlbums  = errors.New("too many active albums")
	ErrNothingToApply = errors.New("nothing to update")
)

const maxTitleLength = 255

// Config 相册服务参数
type Config struct {
	DefaultExpiry   time.Duration
	MaxExpiry       time.Duration
	MaxActive       int
	GracePeriod     time.Duration
	CacheTTL        time.Duration
	DeleteBatchSize int
	BaseURL         string
	Now             func() time.Time
}

// Service 相册服务层
type Service struct {
	albums  *albums.Repository
	photos  *photos.Repository
	users   *users.Repository
	storage storage.Provider
	cache   cache.Provider
	cfg     Config
	logger  *zap.Logger
}

// NewService 创建新的相册服务，cacheProvider 可以为 nil
func NewService(
	albumRepo *albums.Repository,
	photoRepo *photos.Repository,
	userRepo *users.Repository,
	storageProvider storage.Provider,
	cacheProvider cache.Provider,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		albums:  albumRepo,
		photos:  photoRepo,
		users:   userRepo,
		storage: storageProvider,
		cache:   cacheProvider,
		cfg:     cfg,
		logger:  logger,
	}
}

// AlbumView 带生命周期状态的相册，供所有者查看
type AlbumView struct {
	*models.Album
	IsExpired bool            `json:"is_expired"`
	State     lifecycle.State `json:"state"`
	PurgeAt   time.Time       `json:"purge_at"`
	ShareURL  string          `json:"share_url"`
}

// PublicPhoto 公开页面展示的照片，不包含原图地址
type PublicPhoto struct {
	ID           uint   `json:"id"`
	OriginalName string `json:"original_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
}

// PublicAlbum 按分享码访问的相册视图，会被缓存
type PublicAlbum struct {
	ID               uint          `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	CoverURL         string        `json:"cover_url"`
	PhotographerName string        `json:"photographer_name"`
	PhotoCount       int64         `json:"photo_count"`
	ExpiresAt        time.Time     `json:"expires_at"`
	CreatedAt        time.Time     `json:"created_at"`
	Photos           []PublicPhoto `json:"photos"`
}

// Download 下载信息
type Download struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
}

// Client 访问者信息，用于访问日志
type Client struct {
	IP        string
	UserAgent string
}

// CreateInput 创建相册参数，ExpiresInHours 为 0 时使用默认有效期
type CreateInput struct {
	Title          string
	Description    string
	ExpiresInHours int
}

func (s *Service) now() time.Time {
	return s.cfg.Now().UTC()
}

func (s *Service) view(album *models.Album) *AlbumView {
	now := s.now()
	return &AlbumView{
		Album:     album,
		IsExpired: album.IsExpired || album.IsExpiredAt(now),
		State:     lifecycle.StateOf(album, now, s.cfg.GracePeriod),
		PurgeAt:   lifecycle.PurgeAt(album, s.cfg.GracePeriod),
		ShareURL:  strings.TrimRight(s.cfg.BaseURL, "/") + "/s/" + album.ShareCode,
	}
}

func (s *Service) expiryFromHours(hours int) (time.Duration, error) {
	if hours < 0 {
		return 0, fmt.Errorf("%w: expiresInHours must be positive", ErrInvalidExpiry)
	}
	d := time.Duration(hours) * time.Hour
	if s.cfg.MaxExpiry > 0 && d > s.cfg.MaxExpiry {
		return 0, fmt.Errorf("%w: at most %s", ErrInvalidExpiry, s.cfg.MaxExpiry)
	}
	return d, nil
}

// Create 创建相册并生成分享码
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*AlbumView, error) {
	title := strings.TrimSpace(in.Title)
	if len(title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}

	ttl := s.cfg.DefaultExpiry
	if in.ExpiresInHours != 0 {
		d, err := s.expiryFromHours(in.ExpiresInHours)
		if err != nil {
			return nil, err
		}
		ttl = d
	}

	now := s.now()
	if s.cfg.MaxActive > 0 {
		count, err := s.albums.CountActiveByUser(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		if count >= int64(s.cfg.MaxActive) {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyAlbums, s.cfg.MaxActive)
		}
	}

	shareCode, err := utils.GenerateShareCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate share code: %w", err)
	}
	if title == "" {
		title = "Album " + now.Format("2006-01-02 15:04")
	}

	album := &models.Album{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		ShareCode:   shareCode,
		ExpiresAt:   now.Add(ttl),
	}
	if err := s.albums.Create(ctx, album); err != nil {
		return nil, err
	}

	s.logger.Info("album created",
		zap.Uint("album_id", album.ID),
		zap.Uint("user_id", userID),
		zap.Time("expires_at", album.ExpiresAt),
	)
	return s.view(album), nil
}

// List 分页获取用户的相册
func (s *Service) List(ctx context.Context, userID uint, page, pageSize int) ([]*AlbumView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	list, total, err := s.albums.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	views := make([]*AlbumView, 0, len(list))
	for _, a := range list {
		views = append(views, s.view(a))
	}
	return views, total, nil
}

// Get 获取单个相册及其照片
func (s *Service) Get(ctx context.Context, id, userID uint) (*AlbumView, []*models.Photo, error) {
	album, err := s.albums.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, nil, mapNotFound(err)
	}
	list, err := s.photos.ListByAlbum(ctx, album.ID)
	if err != nil {
		return nil, nil, err
	}
	return s.view(album), list, nil
}

// Update 修改标题或描述
func (s *Service) Update(ctx context.Context, id, userID uint, title, description *string) (*AlbumView, error) {
	if title == nil && description == nil {
		return nil, ErrNothingToApply
	}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" || len(trimmed) > maxTitleLength {
			return nil, ErrInvalidTitle
		}
		title = &trimmed
	}

	album, err := s.albums.Update(ctx, id, userID, title, description)
	if err != nil {
		return nil, mapNotFound(err)
	}
	s.evict(ctx, album.ShareCode)
	return s.view(album), nil
}

// ExtendExpiry 将有效期设置为 now + hours，并恢复为未过期
func (s *Service) ExtendExpiry(ctx context.Context, id, userID uint, hours int) (*AlbumView, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("%w: expiresInHours must be positive", ErrInvalidExpiry)
	}
	d, err := s.expiryFromHours(hours)
	if err != nil {
		return nil, err
	}

	album, err := s.albums.ExtendExpiry(ctx, id, userID, s.now().Add(d))
	if err != nil {
		return nil, mapNotFound(err)
	}
	s.evict(ctx, album.ShareCode)

	s.logger.Info("album expiry extended",
		zap.Uint("album_id", album.ID),
		zap.Time("expires_at", album.ExpiresAt),
	)
	return s.view(album), nil
}

// Delete 所有者删除相册：先删对象，再删行
func (s *Service) Delete(ctx context.Context, id, userID uint) error {
	album, err := s.albums.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return mapNotFound(err)
	}

	keys, err := s.photos.KeysByAlbum(ctx, album.ID)
	if err != nil {
		return err
	}
	keys = storage.DedupeKeys(keys)
	batchSize := storage.EffectiveBatchSize(s.storage, s.cfg.DeleteBatchSize)
	for i, batch := range storage.Chunk(keys, batchSize) {
		if err := s.storage.DeleteObjects(ctx, batch); err != nil {
			// 对象删除失败不阻止删除行
			s.logger.Warn("failed to delete album objects",
				zap.Uint("album_id", album.ID),
				zap.Int("batch", i+1),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
		}
	}

	if err := s.albums.Delete(ctx, album.ID, userID); err != nil {
		return mapNotFound(err)
	}
	s.evict(ctx, album.ShareCode)

	s.logger.Info("album deleted", zap.Uint("album_id", album.ID), zap.Int("objects", len(keys)))
	return nil
}

// AccessLogs 返回最近的访问日志
func (s *Service) AccessLogs(ctx context.Context, id, userID uint, limit int) ([]*models.AlbumAccessLog, error) {
	if _, err := s.albums.GetByIDAndUser(ctx, id, userID); err != nil {
		return nil, mapNotFound(err)
	}
	return s.albums.ListAccessLogs(ctx, id, limit)
}

// ViewPublic 按分享码查看相册，过期返回 ErrAlbumExpired，不存在返回 ErrAlbumNotFound
func (s *Service) ViewPublic(ctx context.Context, shareCode string, client Client) (*PublicAlbum, error) {
	now := s.now()
	key := cache.PublicAlbum.Build(shareCode)

	var public PublicAlbum
	hit := false
	if s.cache != nil {
		err := s.cache.Get(ctx, key, &public)
		switch {
		case err == nil:
			hit = true
		case !cache.IsCacheMiss(err):
			s.logger.Warn("public album cache read failed", zap.String("share_code", shareCode), zap.Error(err))
		}
	}

	if hit && !public.ExpiresAt.After(now) {
		s.evict(ctx, shareCode)
		return nil, ErrAlbumExpired
	}

	if !hit {
		album, err := s.albums.GetByShareCode(ctx, shareCode)
		if err != nil {
			return nil, mapNotFound(err)
		}
		if album.IsExpired || album.IsExpiredAt(now) {
			return nil, ErrAlbumExpired
		}
		built, err := s.buildPublic(ctx, album)
		if err != nil {
			return nil, err
		}
		public = *built
		s.storePublic(ctx, key, &public, album.ExpiresAt.Sub(now))
	}

	if err := s.albums.IncrementViewCount(ctx, public.ID); err != nil {
		s.logger.Warn("failed to increment view count", zap.Uint("album_id", public.ID), zap.Error(err))
	}
	s.logAccess(ctx, public.ID, nil, models.AccessActionView, client)
	return &public, nil
}

// DownloadPhoto 记录一次下载并返回原图地址
func (s *Service) DownloadPhoto(ctx context.Context, shareCode string, photoID uint, client Client) (*Download, error) {
	album, err := s.albums.GetByShareCode(ctx, shareCode)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if album.IsExpired || album.IsExpiredAt(s.now()) {
		return nil, ErrAlbumExpired
	}

	photo, err := s.photos.GetByIDAndAlbum(ctx, photoID, album.ID)
	if err != nil {
		if errors.Is(err, photos.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}

	if err := s.photos.IncrementDownloadCount(ctx, photo.ID); err != nil {
		s.logger.Warn("failed to increment photo download count", zap.Uint("photo_id", photo.ID), zap.Error(err))
	}
	if err := s.albums.IncrementDownloadCount(ctx, album.ID); err != nil {
		s.logger.Warn("failed to increment album download count", zap.Uint("album_id", album.ID), zap.Error(err))
	}
	s.logAccess(ctx, album.ID, &photo.ID, models.AccessActionDownload, client)

	return &Download{DownloadURL: photo.OriginalURL, FileName: photo.OriginalName}, nil
}

func (s *Service) buildPublic(ctx context.Context, album *models.Album) (*PublicAlbum, error) {
	list, err := s.photos.ListByAlbum(ctx, album.ID)
	if err != nil {
		return nil, err
	}

	photographer := ""
	if s.users != nil {
		if owner, err := s.users.GetByID(ctx, album.UserID); err == nil {
			photographer = owner.Name
		}
	}

	public := &PublicAlbum{
		ID:               album.ID,
		Title:            album.Title,
		Description:      album.Description,
		CoverURL:         album.CoverURL,
		PhotographerName: photographer,
		PhotoCount:       album.PhotoCount,
		ExpiresAt:        album.ExpiresAt.UTC(),
		CreatedAt:        album.CreatedAt.UTC(),
		Photos:           make([]PublicPhoto, 0, len(list)),
	}
	for _, p := range list {
		public.Photos = append(public.Photos, PublicPhoto{
			ID:           p.ID,
			OriginalName: p.OriginalName,
			ThumbnailURL: p.ThumbnailURL,
			Width:        p.Width,
			Height:       p.Height,
			FileSize:     p.FileSize,
			MimeType:     p.MimeType,
		})
	}
	return public, nil
}

// storePublic 缓存有效期不超过相册剩余有效期
func (s *Service) storePublic(ctx context.Context, key string, public *PublicAlbum, remaining time.Duration) {
	if s.cache == nil {
		return
	}
	ttl := s.cfg.CacheTTL
	if ttl <= 0 || remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, public, ttl); err != nil {
		s.logger.Warn("public album cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) evict(ctx context.Context, shareCode string) {
	if s.cache == nil || shareCode == "" {
		return
	}
	if err := s.cache.Delete(ctx, cache.PublicAlbum.Build(shareCode)); err != nil {
		s.logger.Warn("failed to evict album cache", zap.String("share_code", shareCode), zap.Error(err))
	}
}

func (s *Service) logAccess(ctx context.Context, albumID uint, photoID *uint, action string, client Client) {
	entry := &models.AlbumAccessLog{
		AlbumID:   albumID,
		PhotoID:   photoID,
		Action:    action,
		IPAddress: client.IP,
		UserAgent: utils.SanitizeUserAgent(client.UserAgent),
	}
	if err := s.albums.CreateAccessLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write access log",
			zap.Uint("album_id", albumID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, albums.ErrNotFound) {
		return ErrAlbumNotFound
	}
	return err
}
