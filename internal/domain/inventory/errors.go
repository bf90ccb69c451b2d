package inventory

import (
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrInsufficientStock 库存不足
	// 通过InsufficientStock构造带book_id/requested/available的派生错误
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrInvalidQuantity 变更数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidQuantity, "库存变更数量不合法")
)

// InsufficientStock 构造库存不足错误,调用方可据此调整购买数量
func InsufficientStock(bookID string, requested, available int) *apperrors.AppError {
	return ErrInsufficientStock.WithDetails(map[string]any{
		"book_id":   bookID,
		"requested": requested,
		"available": available,
	})
}
