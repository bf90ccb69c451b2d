package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/user"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// RegisterUseCase 用户注册用例
// 公开注册一律为普通用户;管理员账号只能通过启动配置创建(EnsureAdmin)
type RegisterUseCase struct {
	userService user.Service
	users       user.Repository
	logger      *zap.Logger
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, users user.Repository, logger *zap.Logger) *RegisterUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterUseCase{
		userService: userService,
		users:       users,
		logger:      logger,
	}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Name, user.RoleUser)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("用户注册成功", zap.String("user_id", u.ID))
	return toUserInfo(u), nil
}

// EnsureAdmin 确保管理员账号存在(已存在则跳过)
func (uc *RegisterUseCase) EnsureAdmin(ctx context.Context, email, password, name string) error {
	_, err := uc.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	u, err := uc.userService.Register(ctx, email, password, name, user.RoleAdmin)
	if err != nil {
		// 多实例同时启动时由唯一索引兜底
		if errors.Is(err, apperrors.ErrEmailDuplicate) {
			return nil
		}
		return err
	}

	uc.logger.Info("已创建管理员账号", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return nil
}

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// UserInfo 用户信息(不含密码)
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}
