package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "photos/7/42/f1.jpg", PhotoKey(7, 42, "f1", "jpg"))
	assert.Equal(t, "photos/7/42/f1.png", PhotoKey(7, 42, "f1", ".PNG"))
	assert.Equal(t, "photos/7/42/f1.jpg", PhotoKey(7, 42, "f1", ""))
	assert.Equal(t, "photos/7/42/thumb_f1.jpg", ThumbnailKey(7, 42, "f1"))
}

func TestDedupeKeys(t *testing.T) {
	in := []string{"a", "", "b", "a", "  ", "c", "b"}
	assert.Equal(t, []string{"a", "b", "c"}, DedupeKeys(in))
	assert.Empty(t, DedupeKeys(nil))
}

func TestChunk(t *testing.T) {
	keys := make([]string, 2500)
	for i := range keys {
		keys[i] = "k"
	}

	batches := Chunk(keys, 1000)
	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 1000)
	assert.Len(t, batches[1], 1000)
	assert.Len(t, batches[2], 500)

	assert.Nil(t, Chunk(nil, 1000))
	assert.Len(t, Chunk([]string{"a", "b"}, 0), 1)
	assert.Len(t, Chunk([]string{"a", "b", "c"}, 1), 3)
}

func TestIsValidStoragePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photos/1/2/abc.jpg", true},
		{"photos/1/2/thumb_abc-1.jpg", true},
		{"", false},
		{"/abs/path.jpg", false},
		{"../up.jpg", false},
		{"photos/1/../../x", false},
		{"photos/space name.jpg", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidStoragePath(tt.path), tt.path)
	}
}

func TestBatchError(t *testing.T) {
	boom := errors.New("boom")
	err := &BatchError{Failed: []KeyError{{Key: "a", Err: boom}, {Key: "b", Err: boom}}}

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, err.FailedKeys())
	assert.Contains(t, err.Error(), "2 objects")

	single := &BatchError{Failed: []KeyError{{Key: "a", Err: boom}}}
	assert.Equal(t, "failed to delete a: boom", single.Error())
}

type fixedBatchProvider struct {
	LocalStorage
	limit int
}

func (p *fixedBatchProvider) MaxDeleteBatch() int { return p.limit }

func TestEffectiveBatchSize(t *testing.T) {
	p := &fixedBatchProvider{limit: 1000}
	assert.Equal(t, 1000, EffectiveBatchSize(p, 5000))
	assert.Equal(t, 200, EffectiveBatchSize(p, 200))
	assert.Equal(t, 1000, EffectiveBatchSize(p, 0))
}
