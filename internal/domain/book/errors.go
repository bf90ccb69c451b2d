package book

import (
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidQuantity, "数量不合法")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrStockOverflow 库存超出上限
	ErrStockOverflow = apperrors.New(apperrors.ErrCodeInvalidQuantity, "库存超出上限")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidCategory 未知的图书分类
	ErrInvalidCategory = apperrors.New(apperrors.ErrCodeInvalidParams, "图书分类不正确")

	// ErrInvalidTitle 书名不合法
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名长度应为1-255个字符")

	// ErrUnauthorized 无权操作此图书
	ErrUnauthorized = apperrors.New(apperrors.ErrCodeForbidden, "无权操作此图书")
)

// NotFound 带图书ID的不存在错误
func NotFound(id string) error {
	return ErrBookNotFound.WithDetails(map[string]any{"book_id": id})
}
