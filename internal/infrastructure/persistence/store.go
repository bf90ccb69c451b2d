// Package persistence 按database.driver选择存储实现
package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/domain/user"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/gormstore"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/memory"
)

// Store 存储门面:事务管理器 + 事务外的仓储
type Store interface {
	uow.Manager
	Books() book.Repository
	Orders() order.Repository
	Users() user.Repository
	InventoryLogs() inventory.LogRepository
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*gormstore.Store)(nil)
	_ Store = (*memory.Store)(nil)
)

// Open 创建存储
// memory仅用于本地演示与测试,进程退出数据即丢失
func Open(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Database.Driver {
	case "mysql", "postgres":
		return gormstore.Open(cfg, logger)
	case "memory":
		logger.Warn("使用内存存储,数据不会持久化")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}
}
