package lifecycle

import (
	"testing"
	"time"

	"github.com/anoixa/picshare/database/models"
	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	expires := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	album := &models.Album{ExpiresAt: expires}
	grace := 24 * time.Hour

	tests := []struct {
		name string
		now  time.Time
		want State
	}{
		{"before expiry", expires.Add(-time.Second), StateActive},
		{"at expiry", expires, StateExpiredGrace},
		{"inside grace", expires.Add(grace - time.Second), StateExpiredGrace},
		{"at grace end", expires.Add(grace), StatePurged},
		{"after grace", expires.Add(48 * time.Hour), StatePurged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateOf(album, tt.now, grace))
		})
	}
}

func TestStateOf_ZeroGrace(t *testing.T) {
	expires := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	album := &models.Album{ExpiresAt: expires}

	assert.Equal(t, StateActive, StateOf(album, expires.Add(-time.Nanosecond), 0))
	assert.Equal(t, StatePurged, StateOf(album, expires, 0))
}

func TestPurgeAt(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	album := &models.Album{ExpiresAt: time.Date(2024, 3, 1, 20, 0, 0, 0, loc)}

	got := PurgeAt(album, 7*24*time.Hour)
	assert.Equal(t, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}
