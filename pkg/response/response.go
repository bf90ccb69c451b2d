package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// Response 统一响应结构
// HTTP状态码恒为200,Code是业务错误码(0表示成功)
type Response struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    interface{}    `json:"data,omitempty"`
	Details map[string]any `json:"details,omitempty"` // 错误上下文,如库存不足时的可用数量
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
// 内部原因(数据库错误等)只写日志,不返回给客户端
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if cause := apperrors.Cause(err); cause != nil {
		fields := []zap.Field{
			zap.Int("code", appErr.Code),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(cause),
		}
		if appErr.Code >= 50000 {
			zap.L().Error("请求处理失败", fields...)
		} else {
			zap.L().Warn("请求处理失败", fields...)
		}
	}

	c.JSON(http.StatusOK, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// BindError 参数绑定失败
func BindError(c *gin.Context, err error) {
	ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
}

// PageData 分页数据
type PageData struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}
