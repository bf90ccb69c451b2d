package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// Service 用户领域服务
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、验证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, email, password, name string, role Role) (*User, error)

	// Login 用户登录
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
// cost为bcrypt计算强度,传0使用默认值12
func NewService(repo Repository, cost int) Service {
	if cost == 0 {
		cost = 12
	}
	return &service{repo: repo, cost: cost}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验
// 2. 密码强度校验（8-20位，包含字母和数字）
// 3. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, email, password, name string, role Role) (*User, error) {
	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return nil, apperrors.ErrInvalidParams.WithMessage("邮箱格式不正确")
	}

	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return nil, apperrors.ErrInvalidParams.WithMessage("用户名长度应为2-50个字符")
	}

	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.ErrInvalidParams.WithMessage("用户角色不正确")
	}

	// bcrypt自动加盐，每次加密结果都不同
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	user := NewUser(email, string(hashedPassword), name, role)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err // Repository已转换为业务错误
	}

	return user, nil
}

// Login 用户登录
// 用户不存在与密码错误返回同一个错误,避免探测已注册邮箱
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := s.ValidatePassword(user.Password, password); err != nil {
		return nil, err
	}

	return user, nil
}

// ValidatePassword 验证明文密码与哈希值是否匹配
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// =========================================
// 辅助函数：业务规则校验
// =========================================

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// isValidEmail 邮箱格式校验
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// normalizeEmail 邮箱统一小写存储,唯一索引不区分大小写
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePasswordStrength 密码强度校验
// 规则：8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
