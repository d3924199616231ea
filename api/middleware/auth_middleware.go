package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anoixa/picshare/api/common"
	"github.com/anoixa/picshare/database/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "email"
	ContextRoleKey   = "role"
)

// JWTAuth 校验由认证服务签发的 HS256 令牌，只做验证不签发
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取 Authorization 头
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "No Authorization request header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Authorization field format error")
			return
		}

		if len(secret) == 0 {
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Authentication is not configured")
			return
		}

		if err := handleJwtAuth(c, parts[1], secret); err != nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Next()
	}
}

func handleJwtAuth(c *gin.Context, tokenString string, secret []byte) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid token claims")
	}

	// 兼容旧版签发服务使用的 id 字段
	userIDValue, ok := claims["user_id"]
	if !ok {
		userIDValue, ok = claims["id"]
	}
	if !ok {
		return errors.New("user_id not found in token claims")
	}
	userID, ok := userIDValue.(float64)
	if !ok || userID < 1 {
		return errors.New("user_id in token is not a valid number")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RolePhotographer
	}
	email, _ := claims["email"].(string)

	c.Set(ContextUserIDKey, uint(userID))
	c.Set(ContextEmailKey, email)
	c.Set(ContextRoleKey, role)
	return nil
}

// GetUserID 取出已认证的用户 ID
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
