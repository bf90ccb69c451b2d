package errors

import (
	"errors"
	"fmt"
	"maps"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Details是可以返回给客户端的结构化上下文（如库存不足时的可用数量）
// 4. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int            `json:"code"`              // 业务错误码
	Message string         `json:"message"`           // 用户友好的错误提示
	Details map[string]any `json:"details,omitempty"` // 附加信息
	Err     error          `json:"-"`                 // 内部错误（不序列化）

	// base 指向派生来源的预定义错误，errors.Is 沿该链匹配
	base *AppError
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 派生错误与其预定义错误视为同一类
// 例如 ErrInsufficientStock.WithDetails(...) 仍满足 errors.Is(err, ErrInsufficientStock)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	for cur := e; cur != nil; cur = cur.base {
		if cur == t {
			return true
		}
	}
	return false
}

// WithDetails 基于当前错误派生一个带附加信息的新错误（不修改预定义错误本身）
func (e *AppError) WithDetails(details map[string]any) *AppError {
	derived := e.derive()
	if derived.Details == nil {
		derived.Details = make(map[string]any, len(details))
	}
	maps.Copy(derived.Details, details)
	return derived
}

// WithCause 派生错误并挂上内部原因
func (e *AppError) WithCause(err error) *AppError {
	derived := e.derive()
	derived.Err = err
	return derived
}

// WithMessage 派生错误并替换提示信息
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	derived := e.derive()
	derived.Message = fmt.Sprintf(format, args...)
	return derived
}

func (e *AppError) derive() *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: maps.Clone(e.Details),
		Err:     e.Err,
		base:    e,
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
		base:    ErrInternal,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
		base:    ErrInternal,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound      = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound  = 40401 // 用户不存在
	ErrCodeBookNotFound  = 40402 // 图书不存在
	ErrCodeOrderNotFound = 40403 // 订单不存在或无权访问

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError       = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock   = 40001 // 库存不足
	ErrCodeInvalidOrderStatus  = 40002 // 订单状态非法
	ErrCodeEmailDuplicate      = 40003 // 邮箱已存在
	ErrCodeISBNDuplicate       = 40004 // ISBN已存在
	ErrCodeWeakPassword        = 40005 // 密码强度不足
	ErrCodeConstraintViolation = 40009 // 唯一键/外键冲突(通用)
	ErrCodeOrderNotEditable    = 40010 // 订单已不可修改
	ErrCodeConcurrentConflict  = 40011 // 并发冲突重试耗尽

	// 参数错误（40900-40999）
	ErrCodeInvalidParams   = 40900 // 参数错误
	ErrCodeBindError       = 40901 // 参数绑定失败
	ErrCodeEmptyItems      = 40902 // 订单明细为空
	ErrCodeInvalidQuantity = 40903 // 数量不合法
	ErrCodeDuplicateBook   = 40904 // 同一请求中图书重复
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrNotFound     = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 业务规则
	ErrEmailDuplicate      = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrISBNDuplicate       = New(ErrCodeISBNDuplicate, "ISBN号已存在")
	ErrWeakPassword        = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")
	ErrConstraintViolation = New(ErrCodeConstraintViolation, "操作无法完成，请刷新后重试")
	ErrConcurrentConflict  = New(ErrCodeConcurrentConflict, "系统繁忙，请稍后重试")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// Cause 返回最内层的非AppError原因，用于日志
func Cause(err error) error {
	var appErr *AppError
	for errors.As(err, &appErr) {
		if appErr.Err == nil {
			return nil
		}
		err = appErr.Err
	}
	return err
}
