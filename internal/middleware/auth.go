package middleware

import (
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/util"
	"rural_lms_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// AuthMiddleware 只接受 Authorization: Bearer <token>
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, secret, bearerToken(c))
	}
}

// StreamAuthMiddleware 供 WebSocket 使用，浏览器无法设置请求头时可用 ?token= 传递
func StreamAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString = strings.TrimSpace(c.Query("token"))
		}
		authenticate(c, secret, tokenString)
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
}

func authenticate(c *gin.Context, secret, tokenString string) {
	if tokenString == "" {
		util.Unauthorized(c)
		c.Abort()
		return
	}

	claims, err := util.ParseJWT(tokenString, secret)
	if err != nil {
		logger.Log.Debug("JWT rejected", zap.String("path", c.FullPath()), zap.Error(err))
		util.Unauthorized(c)
		c.Abort()
		return
	}

	util.SetUserInContext(c, claims)
	c.Next()
}

// RoleMiddleware 调用者角色必须在 roles 中，管理员没有隐式放行
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}
