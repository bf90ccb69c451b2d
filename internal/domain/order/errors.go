package order

import (
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFoundOrUnauthorized 订单不存在或不属于当前用户
	// 两种情况返回同一个错误,避免泄露他人订单是否存在
	ErrOrderNotFoundOrUnauthorized = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在或无权访问")

	// ErrOrderNotEditable 订单已发货,不允许修改或取消
	ErrOrderNotEditable = apperrors.New(apperrors.ErrCodeOrderNotEditable, "订单已发货,不允许修改")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrInvalidStatus 未知的订单状态
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "订单状态不正确")

	// ErrEmptyItems 订单明细为空
	ErrEmptyItems = apperrors.New(apperrors.ErrCodeEmptyItems, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidQuantity, "购买数量必须大于0")

	// ErrDuplicateBook 同一请求中同一本书出现多次
	ErrDuplicateBook = apperrors.New(apperrors.ErrCodeDuplicateBook, "同一本书不能重复出现在订单明细中")
)
