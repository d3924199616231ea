package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey 请求 ID 在 gin 上下文中的键
const RequestIDKey = "request_id"

// Response 统一响应结构，出错时带上请求 ID 便于排查
type Response struct {
	Status    string      `json:"status"`
	Msg       string      `json:"msg"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func Respond(c *gin.Context, httpStatus int, status string, message string, data interface{}) {
	resp := Response{
		Status: status,
		Msg:    message,
		Data:   data,
	}
	if status == "error" {
		resp.RequestID = c.GetString(RequestIDKey)
	}
	c.JSON(httpStatus, resp)
}

// RespondSuccess 200 响应
func RespondSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, "success", "", data)
}

// RespondSuccessMessage 200 响应，附带提示信息
func RespondSuccessMessage(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusOK, "success", message, data)
}

// RespondCreated 201 响应
func RespondCreated(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusCreated, "success", message, data)
}

// RespondError 错误响应
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, "error", message, nil)
}

// RespondErrorAbort 错误响应并中断后续处理
func RespondErrorAbort(c *gin.Context, httpStatus int, message string) {
	RespondError(c, httpStatus, message)
	c.Abort()
}
