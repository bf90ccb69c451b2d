package user

import (
	"time"

	"github.com/google/uuid"
)

// Role 用户角色
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 2. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID        string
	Email     string
	Password  string // bcrypt哈希值
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, name string, role Role) *User {
	now := time.Now()
	return &User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hashedPassword,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Principal 返回该用户作为调用方的身份
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// Principal 已认证的调用方身份
// 由鉴权中间件从Token中解析得到,业务层只信任、不再校验
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin 是否为管理员
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
