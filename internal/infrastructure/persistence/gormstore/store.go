package gormstore

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/domain/user"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
)

// Store 关系型数据库存储
// 事务外的仓储直接绑定连接池,事务内的仓储由TxManager绑定到同一个事务
type Store struct {
	db *gorm.DB
	tx *TxManager
}

// NewStore 创建存储
func NewStore(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Store {
	return &Store{
		db: db,
		tx: NewTxManager(db, cfg.Database.Isolation, cfg.Tx, logger),
	}
}

// Open 建立连接、迁移并创建存储
func Open(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	db, err := NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewStore(db, cfg, logger), nil
}

// Transaction 实现uow.Manager
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, tx uow.Tx) error) error {
	return s.tx.Transaction(ctx, fn)
}

// Ping 健康检查
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Books() book.Repository                 { return NewBookRepository(s.db) }
func (s *Store) Orders() order.Repository               { return NewOrderRepository(s.db) }
func (s *Store) Users() user.Repository                 { return NewUserRepository(s.db) }
func (s *Store) InventoryLogs() inventory.LogRepository { return NewInventoryLogRepository(s.db) }
