package middleware

import (
	"net/http"
	"slices"

	"github.com/anoixa/picshare/api/common"
	"github.com/gin-gonic/gin"
)

// GetRole 返回 JWTAuth 写入上下文的角色
func GetRole(c *gin.Context) (string, bool) {
	role, ok := c.Get(ContextRoleKey)
	if !ok {
		return "", false
	}
	s, ok := role.(string)
	return s, ok && s != ""
}

// RequireRole 仅允许列出的角色继续，必须挂在 JWTAuth 之后
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Role information not found.")
			return
		}

		if !slices.Contains(allowedRoles, role) {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Role "+role+" cannot access this resource.")
			return
		}
		c.Next()
	}
}
