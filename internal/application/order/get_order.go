package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/user"
)

// GetOrderUseCase 查询订单详情
// 先读缓存,未命中再查库并凭Lease回填;缓存不可用时直接查库且不回填
type GetOrderUseCase struct {
	orders order.Repository
	cache  Cache
	logger *zap.Logger
}

// NewGetOrderUseCase 创建订单详情用例
func NewGetOrderUseCase(orders order.Repository, cache Cache, logger *zap.Logger) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders, cache: cache, logger: nopIfNil(logger)}
}

// Execute 查询订单
// 只有下单用户本人可以查看,他人订单与不存在返回同一个错误
func (uc *GetOrderUseCase) Execute(ctx context.Context, principal user.Principal, orderID string) (*OrderResult, error) {
	cached, lease, hit, err := uc.cache.Get(ctx, orderID)
	fillable := err == nil
	if err != nil {
		uc.logger.Warn("读取订单缓存失败", zap.String("order_id", orderID), zap.Error(err))
	} else if hit {
		if cached.UserID != principal.UserID {
			return nil, order.ErrOrderNotFoundOrUnauthorized
		}
		return cached, nil
	}

	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(principal.UserID) {
		return nil, order.ErrOrderNotFoundOrUnauthorized
	}

	result := toResult(o)
	if !fillable {
		return result, nil
	}
	if filled, err := uc.cache.Fill(ctx, result, lease); err != nil {
		uc.logger.Warn("写入订单缓存失败", zap.String("order_id", orderID), zap.Error(err))
	} else if !filled {
		uc.logger.Debug("订单已被修改,放弃回填缓存", zap.String("order_id", orderID))
	}
	return result, nil
}

// ListOrdersUseCase 查询当前用户的订单列表
type ListOrdersUseCase struct {
	orders order.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orders order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orders: orders}
}

// Execute 分页查询(page默认1,pageSize默认10,最大100)
func (uc *ListOrdersUseCase) Execute(ctx context.Context, principal user.Principal, page, pageSize int) (*ListOrdersResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	orders, total, err := uc.orders.ListByUserID(ctx, principal.UserID, page, pageSize)
	if err != nil {
		return nil, err
	}

	list := make([]*OrderResult, 0, len(orders))
	for _, o := range orders {
		list = append(list, toResult(o))
	}
	return &ListOrdersResult{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}
