package albums

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anoixa/picshare/database"
	"github.com/anoixa/picshare/database/models"
	"github.com/anoixa/picshare/database/sqlitetest"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) (*Repository, database.Provider) {
	t.Helper()
	provider := sqlitetest.Open(t)
	return NewRepository(provider), provider
}

func createUser(t *testing.T, db database.Provider, name string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        name + "@example.com",
		Name:         name,
		PasswordHash: "hash",
	}
	require.NoError(t, db.DB().Create(user).Error)
	return user
}

func createAlbum(t *testing.T, db database.Provider, userID uint, shareCode string, expiresAt time.Time, expired bool) *models.Album {
	t.Helper()
	album := &models.Album{
		UserID:    userID,
		Title:     "album " + shareCode,
		ShareCode: shareCode,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, db.DB().Create(album).Error)
	if expired {
		require.NoError(t, db.DB().Model(album).Update("is_expired", true).Error)
		album.IsExpired = true
	}
	return album
}

func createPhoto(t *testing.T, db database.Provider, album *models.Album, name string, withThumb bool) *models.Photo {
	t.Helper()
	photo := &models.Photo{
		AlbumID:      album.ID,
		UserID:       album.UserID,
		OriginalName: name,
		OSSKey:       fmt.Sprintf("photos/%d/%d/%s.jpg", album.UserID, album.ID, name),
		OriginalURL:  "https://cdn.example.com/" + name,
		FileSize:     1024,
		MimeType:     "image/jpeg",
	}
	if withThumb {
		photo.ThumbnailOSSKey = fmt.Sprintf("photos/%d/%d/thumb_%s.jpg", album.UserID, album.ID, name)
	}
	require.NoError(t, db.DB().Create(photo).Error)
	return photo
}

func countRows(t *testing.T, db database.Provider, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.WithContext(context.Background()).Model(model).Where(query, args...).Count(&n).Error)
	return n
}
