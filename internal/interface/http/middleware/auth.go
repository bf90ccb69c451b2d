package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookstore/orderflow/internal/domain/user"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
	"github.com/bookstore/orderflow/pkg/jwt"
	"github.com/bookstore/orderflow/pkg/response"
)

const (
	principalKey   = "principal"
	accessTokenKey = "access_token"
)

// TokenBlacklist 登出Token黑名单
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// Header → Token → 黑名单 → Access Claims → Principal注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, blacklist: blacklist}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			response.Error(c, apperrors.ErrRedisError.WithCause(err))
			c.Abort()
			return
		}
		if revoked {
			response.Error(c, apperrors.ErrInvalidToken.WithMessage("Token已失效,请重新登录"))
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseAccessToken(token)
		if err != nil {
			response.Error(c, err) // ErrTokenExpired / ErrInvalidToken
			c.Abort()
			return
		}

		role := user.Role(claims.Role)
		if !role.Valid() {
			response.Error(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(principalKey, user.Principal{UserID: claims.UserID, Role: role})
		c.Set(accessTokenKey, token)
		c.Next()
	}
}

// RequireAdmin 要求管理员角色,必须放在RequireAuth之后
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || !p.IsAdmin() {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal 从Context获取当前调用方身份
func GetPrincipal(c *gin.Context) (user.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return user.Principal{}, false
	}
	p, ok := v.(user.Principal)
	return p, ok
}

// MustGetPrincipal 用于已经通过RequireAuth的Handler
func MustGetPrincipal(c *gin.Context) user.Principal {
	p, ok := GetPrincipal(c)
	if !ok {
		panic("principal not found in context")
	}
	return p
}

// GetAccessToken 当前请求携带的Access Token(登出时加入黑名单)
func GetAccessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}

// bearerToken 解析 Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
