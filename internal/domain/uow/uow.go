// Package uow 定义工作单元(事务)端口
//
// 订单流程中的所有写操作都通过 Manager.Transaction 提供的 Tx 完成:
// fn 返回nil则提交,返回错误则整体回滚,不存在部分提交。
package uow

import (
	"context"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
)

// Tx 事务句柄,返回的仓储都绑定在同一个事务上
type Tx interface {
	Books() book.Repository
	Orders() order.Repository
	InventoryLogs() inventory.LogRepository
}

// Manager 事务管理器
type Manager interface {
	// Transaction 在事务中执行fn
	// 实现可以在死锁/序列化失败时重新执行fn,因此fn必须可重入(不得持有事务外的副作用)
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
