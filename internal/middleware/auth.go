package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/Joey1399/byte-world-ai/internal/utils"
)

// AuthMiddleware 会话令牌认证中间件
type AuthMiddleware struct {
	jwtManager *utils.JWTManager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *utils.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// RequireSession 需要有效会话令牌的中间件
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "NO_TOKEN",
				"message": "缺少会话令牌",
			})
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_TOKEN",
				"message": "无效的会话令牌",
				"details": err.Error(),
			})
			c.Abort()
			return
		}

		c.Set("sessionID", claims.SessionID)
		c.Set("token", token)

		c.Next()
	}
}

// OptionalSession 可选会话令牌的中间件（令牌有效则注入会话ID，无令牌放行）
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token != "" {
			claims, err := m.jwtManager.ValidateToken(token)
			if err == nil {
				c.Set("sessionID", claims.SessionID)
				c.Set("token", token)
			}
		}

		c.Next()
	}
}

// extractToken 从请求中提取令牌
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	// 1. 从Authorization Header获取 (Bearer Token)
	bearerToken := c.GetHeader("Authorization")
	if bearerToken != "" {
		parts := strings.Split(bearerToken, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// 2. 从X-Session-Token Header获取
	if token := c.GetHeader("X-Session-Token"); token != "" {
		return token
	}

	// 3. 从Cookie获取
	if token, err := c.Cookie("session_token"); err == nil && token != "" {
		return token
	}

	// 4. 从Query参数获取（WebSocket握手使用）
	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}

// GetSessionID 从上下文获取会话ID
func GetSessionID(c *gin.Context) (string, bool) {
	if sessionID, exists := c.Get("sessionID"); exists {
		if id, ok := sessionID.(string); ok {
			return id, true
		}
	}
	return "", false
}

// HasSession 检查请求是否携带有效会话
func HasSession(c *gin.Context) bool {
	_, exists := c.Get("sessionID")
	return exists
}
