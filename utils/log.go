package utils

import (
	"strings"
	"unicode"
)

// SanitizeLogMessage 去掉不可打印字符，避免日志注入
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == '\n' || r == '\t' {
			sb.WriteRune(' ')
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeUserAgent 截断并清理 User-Agent
func SanitizeUserAgent(ua string) string {
	if len(ua) > 255 {
		ua = ua[:255]
	}
	return SanitizeLogMessage(ua)
}
