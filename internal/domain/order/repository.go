package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 写操作必须在uow事务内调用,由uow.Tx提供实例
type Repository interface {
	// Create 创建订单头及其全部待持久化明细
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含明细)
	// 不存在返回ErrOrderNotFoundOrUnauthorized
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByIDForUpdate 加行锁查询订单(SELECT ... FOR UPDATE)
	FindByIDForUpdate(ctx context.Context, id string) (*Order, error)

	// SaveItems 将聚合的待持久化明细变更落库,成功后调用MarkPersisted
	SaveItems(ctx context.Context, order *Order) error

	// Touch 更新订单头(状态与更新时间)
	Touch(ctx context.Context, order *Order) error

	// Delete 删除订单,明细由外键级联删除
	Delete(ctx context.Context, id string) error

	// ListByUserID 分页查询用户的订单列表(按创建时间倒序)
	ListByUserID(ctx context.Context, userID string, page, pageSize int) ([]*Order, int64, error)
}
