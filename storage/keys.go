package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PhotoKey 原图 key：photos/{userId}/{albumId}/{fileId}.{ext}
func PhotoKey(userID, albumID uint, fileID, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("photos/%d/%d/%s.%s", userID, albumID, fileID, ext)
}

// ThumbnailKey 缩略图 key，缩略图统一为 jpg
func ThumbnailKey(userID, albumID uint, fileID string) string {
	return fmt.Sprintf("photos/%d/%d/thumb_%s.jpg", userID, albumID, fileID)
}

// DedupeKeys 去掉空白与重复的 key，保持首次出现的顺序
func DedupeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Chunk 将 key 切分为每批最多 size 个
func Chunk(keys []string, size int) [][]string {
	if len(keys) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(keys)
	}
	batches := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		batches = append(batches, keys[start:end])
	}
	return batches
}

// IsValidStoragePath 校验存储路径是否合法
func IsValidStoragePath(path string) bool {
	if path == "" {
		return false
	}

	// 不允许绝对路径
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}

	// 防止目录遍历
	if strings.Contains(path, "..") {
		return false
	}

	for _, r := range path {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}
	return true
}
