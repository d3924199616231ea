package utils

import (
	"context"
	"errors"
	"strings"
	"syscall"
)

// IsContextCanceled 错误链中包含 context.Canceled
// 部分驱动只返回文本，所以同时匹配错误信息
func IsContextCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return strings.Contains(err.Error(), "context canceled")
}

// IsClientDisconnect 请求方已断开：上下文被取消，或写连接时对端已关闭
func IsClientDisconnect(err error) bool {
	if IsContextCanceled(err) {
		return true
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
