package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

const issuer = "bookstore"

// Token类型,写入typ声明;两种Token不可互换使用
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Manager JWT管理器
// 双Token:Access Token用于API鉴权(短期),Refresh Token用于换取新的Access Token(长期)
type Manager struct {
	secret             string
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
}

// NewManager 创建JWT管理器
func NewManager(secret string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:             secret,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
	}
}

// Claims 自定义JWT Claims
// Role随Token下发,鉴权中间件据此构造调用方身份,不再查库
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair Token对（Access + Refresh）
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Access Token过期时间（秒）

	// RefreshTokenID Refresh Token的jti,登录时写入会话,刷新时比对
	RefreshTokenID string `json:"-"`
}

// AccessTokenTTL Access Token有效期(登出时黑名单保留同样时长)
func (m *Manager) AccessTokenTTL() time.Duration {
	return m.accessTokenExpire
}

// RefreshTokenTTL Refresh Token有效期
func (m *Manager) RefreshTokenTTL() time.Duration {
	return m.refreshTokenExpire
}

// GenerateToken 生成Token对
func (m *Manager) GenerateToken(userID, email, role string) (*TokenPair, error) {
	now := time.Now()

	accessToken, err := m.sign(Claims{
		UserID:           userID,
		Email:            email,
		Role:             role,
		TokenType:        TokenTypeAccess,
		RegisteredClaims: m.registered(userID, now, m.accessTokenExpire),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	// Refresh Token只包含UserID和Role,减少payload大小
	refreshClaims := Claims{
		UserID:           userID,
		Role:             role,
		TokenType:        TokenTypeRefresh,
		RegisteredClaims: m.registered(userID, now, m.refreshTokenExpire),
	}
	refreshClaims.ID = uuid.NewString()
	refreshToken, err := m.sign(refreshClaims)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Refresh Token失败")
	}

	return &TokenPair{
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		ExpiresIn:      int64(m.accessTokenExpire.Seconds()),
		RefreshTokenID: refreshClaims.ID,
	}, nil
}

// ParseToken 解析并验证Token(签名算法、签名、exp、nbf)
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}

// ParseAccessToken 只接受Access Token,用于API鉴权
func (m *Manager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.parseTyped(tokenString, TokenTypeAccess)
}

// ParseRefreshToken 只接受Refresh Token,用于换取新的Access Token
func (m *Manager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return m.parseTyped(tokenString, TokenTypeRefresh)
}

func (m *Manager) parseTyped(tokenString, tokenType string) (*Claims, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// IssueAccessToken 按已校验的Refresh Token声明签发新的Access Token
func (m *Manager) IssueAccessToken(refresh *Claims) (string, error) {
	tokenString, err := m.sign(Claims{
		UserID:           refresh.UserID,
		Email:            refresh.Email,
		Role:             refresh.Role,
		TokenType:        TokenTypeAccess,
		RegisteredClaims: m.registered(refresh.UserID, time.Now(), m.accessTokenExpire),
	})
	if err != nil {
		return "", apperrors.Wrap(err, "刷新Token失败")
	}

	return tokenString, nil
}

func (m *Manager) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
}

func (m *Manager) registered(userID string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   userID,
	}
}

// =========================================
// 说明
// =========================================
//
// 1. JWT无法主动失效,登出时把Access Token放入Redis黑名单,
//    黑名单过期时间 = Access Token有效期
//    Refresh Token的jti记录在会话中,登出删除会话后该Refresh Token随之失效
// 2. secret必须足够复杂(建议32位以上随机字符串),生产环境必须使用HTTPS
