package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/user"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
	"github.com/bookstore/orderflow/pkg/jwt"
)

// SessionStore 会话与Token黑名单存储端口
// Redis实现见infrastructure/persistence/redis,未启用Redis时使用内存实现
type SessionStore interface {
	SaveSession(ctx context.Context, userID string, data map[string]interface{}, ttl time.Duration) error
	// GetSessionField 会话不存在或字段不存在时返回空字符串
	GetSessionField(ctx context.Context, userID, field string) (string, error)
	DeleteSession(ctx context.Context, userID string) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// LoginUseCase 用户登录用例
// 验证邮箱密码 → 生成JWT Token对(携带角色) → 保存会话
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
	logger       *zap.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore SessionStore,
	logger *zap.Logger,
) *LoginUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}

	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"role":     string(u.Role),
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	sessionData[sessionRefreshIDField] = tokenPair.RefreshTokenID

	// 会话有效期 = Refresh Token有效期;保存失败不影响登录,但该Refresh Token无法刷新
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.jwtManager.RefreshTokenTTL()); err != nil {
		uc.logger.Warn("保存会话失败", zap.String("user_id", u.ID), zap.Error(err))
	}

	return &LoginResponse{
		User:         *toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore SessionStore
	jwtManager   *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, jwtManager: jwtManager}
}

// Execute 删除会话(Refresh Token随之失效),并将Access Token加入黑名单(防止过期前继续使用)
func (uc *LogoutUseCase) Execute(ctx context.Context, userID string, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTokenTTL())
}

// sessionRefreshIDField 会话中记录当前有效Refresh Token的jti
// 每个用户只保留一个会话,重新登录后旧的Refresh Token失效
const sessionRefreshIDField = "refresh_id"

// RefreshTokenUseCase 刷新Access Token用例
// Refresh Token → 校验类型与签名 → 比对会话中的jti → 签发Access Token
type RefreshTokenUseCase struct {
	sessionStore SessionStore
	jwtManager   *jwt.Manager
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(sessionStore SessionStore, jwtManager *jwt.Manager) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{sessionStore: sessionStore, jwtManager: jwtManager}
}

// Execute 返回新的Access Token;会话已删除(登出)或已被新登录替换时拒绝
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (string, error) {
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	current, err := uc.sessionStore.GetSessionField(ctx, claims.UserID, sessionRefreshIDField)
	if err != nil {
		return "", apperrors.ErrRedisError.WithCause(err)
	}
	if current == "" || current != claims.ID {
		return "", apperrors.ErrInvalidToken.WithMessage("Refresh Token已失效,请重新登录")
	}

	return uc.jwtManager.IssueAccessToken(claims)
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}
