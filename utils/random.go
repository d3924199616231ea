package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// shareCodeBytes 12 字节随机数编码后为 16 个字符
const shareCodeBytes = 12

// GenerateRandomToken Generate random token
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateShareCode 生成相册分享码，URL 安全
func GenerateShareCode() (string, error) {
	return GenerateRandomToken(shareCodeBytes)
}
