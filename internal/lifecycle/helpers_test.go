package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/anoixa/picshare/database"
	"github.com/anoixa/picshare/database/models"
	"github.com/anoixa/picshare/database/repo/albums"
	"github.com/anoixa/picshare/database/sqlitetest"
	"github.com/anoixa/picshare/storage"
	"github.com/stretchr/testify/require"
)

const testGrace = 7 * 24 * time.Hour

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeBlobs 记录每次批量删除，可按 key 或整批注入失败
type fakeBlobs struct {
	mu       sync.Mutex
	batches  [][]string
	failKeys map[string]bool
	failAll  error
	block    bool
}

func (f *fakeBlobs) DeleteObjects(ctx context.Context, keys []string) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]string(nil), keys...))

	if f.failAll != nil {
		return f.failAll
	}
	var failed []storage.KeyError
	for _, k := range keys {
		if f.failKeys[k] {
			failed = append(failed, storage.KeyError{Key: k, Err: fmt.Errorf("access denied")})
		}
	}
	if len(failed) > 0 {
		return &storage.BatchError{Failed: failed}
	}
	return nil
}

func (f *fakeBlobs) requestedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, b := range f.batches {
		keys = append(keys, b...)
	}
	sort.Strings(keys)
	return keys
}

type fakeCache struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, key)
	return c.err
}

type fixture struct {
	db    database.Provider
	repo  *albums.Repository
	blobs *fakeBlobs
	cache *fakeCache
	clock *fakeClock
	user  *models.User
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db := sqlitetest.Open(t)
	user := &models.User{Email: "owner@example.com", Name: "owner", PasswordHash: "hash"}
	require.NoError(t, db.DB().Create(user).Error)

	return &fixture{
		db:    db,
		repo:  albums.NewRepository(db),
		blobs: &fakeBlobs{},
		cache: &fakeCache{},
		clock: &fakeClock{now: now},
		user:  user,
	}
}

// sweeper 未指定宽限期时使用 testGrace
func (f *fixture) sweeper(opts Options) *Sweeper {
	if opts.GracePeriod == 0 {
		opts.GracePeriod = testGrace
	}
	return f.sweeperExact(opts)
}

// sweeperExact 原样使用 opts.GracePeriod，包括 0
func (f *fixture) sweeperExact(opts Options) *Sweeper {
	if opts.BatchSize == 0 {
		opts.BatchSize = 1000
	}
	opts.Now = f.clock.Now
	return NewSweeper(f.repo, f.blobs, f.cache, opts, nil)
}

func (f *fixture) album(t *testing.T, id uint, shareCode string, expiresAt time.Time) *models.Album {
	t.Helper()
	album := &models.Album{
		ID:        id,
		UserID:    f.user.ID,
		Title:     "album " + shareCode,
		ShareCode: shareCode,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, f.db.DB().Create(album).Error)
	return album
}

func (f *fixture) photo(t *testing.T, album *models.Album, name string, withThumb bool) *models.Photo {
	t.Helper()
	photo := &models.Photo{
		AlbumID:      album.ID,
		UserID:       album.UserID,
		OriginalName: name + ".jpg",
		OSSKey:       storage.PhotoKey(album.UserID, album.ID, name, "jpg"),
		OriginalURL:  "https://cdn.example.com/" + name,
		FileSize:     2048,
		MimeType:     "image/jpeg",
	}
	if withThumb {
		photo.ThumbnailOSSKey = storage.ThumbnailKey(album.UserID, album.ID, name)
	}
	require.NoError(t, f.db.DB().Create(photo).Error)
	return photo
}

func (f *fixture) accessLog(t *testing.T, album *models.Album) {
	t.Helper()
	log := &models.AlbumAccessLog{AlbumID: album.ID, Action: models.AccessActionView, IPAddress: "127.0.0.1"}
	require.NoError(t, f.db.DB().Create(log).Error)
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.DB().Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func (f *fixture) reload(t *testing.T, id uint) *models.Album {
	t.Helper()
	album, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return album
}

// fakeStore 纯内存的 AlbumStore，用于注入失败
type fakeStore struct {
	mu          sync.Mutex
	markErr     error
	listErr     error
	rows        []albums.PurgeRow
	deleteErr   map[uint]error
	notDue      map[uint]bool
	deleted     []uint
	markStarted chan struct{}
	markRelease chan struct{}
	markPanic   bool
}

func (s *fakeStore) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	if s.markPanic {
		panic("boom")
	}
	if s.markStarted != nil {
		close(s.markStarted)
		<-s.markRelease
	}
	return 0, s.markErr
}

func (s *fakeStore) CountMarkable(ctx context.Context, now time.Time) (int64, error) {
	return 0, s.markErr
}

func (s *fakeStore) ListPurgeCandidates(ctx context.Context, cutoff time.Time) ([]albums.PurgeRow, error) {
	return s.rows, s.listErr
}

func (s *fakeStore) PreviewPurgeCandidates(ctx context.Context, cutoff time.Time) ([]albums.PurgeRow, error) {
	return s.rows, s.listErr
}

func (s *fakeStore) DeleteExpired(ctx context.Context, id uint, cutoff time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deleteErr[id]; err != nil {
		return false, err
	}
	if s.notDue[id] {
		return false, nil
	}
	s.deleted = append(s.deleted, id)
	return true, nil
}

func purgeRow(albumID uint, shareCode, key, thumb string) albums.PurgeRow {
	row := albums.PurgeRow{AlbumID: albumID, ShareCode: shareCode}
	if key != "" {
		row.OSSKey.String, row.OSSKey.Valid = key, true
	}
	if thumb != "" {
		row.ThumbnailOSSKey.String, row.ThumbnailOSSKey.Valid = thumb, true
	}
	return row
}

type albumsRow = albums.PurgeRow
