package gormstore

import (
	"context"
	"database/sql"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
	"github.com/bookstore/orderflow/pkg/metrics"
)

// TxManager 事务管理器
//  1. fn内通过tx拿到的仓储都绑定在同一个*gorm.DB事务上
//  2. fn返回error时ROLLBACK,返回nil时COMMIT
//  3. 死锁/锁等待超时/序列化失败时以指数退避重试整个fn;约束冲突与业务错误不重试
//  4. 重试耗尽返回ErrConcurrentConflict
type TxManager struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
	retry     config.TxConfig
	logger    *zap.Logger
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB, isolation string, retry config.TxConfig, logger *zap.Logger) *TxManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxManager{
		db:        db,
		isolation: parseIsolation(isolation),
		retry:     retry,
		logger:    logger,
	}
}

// Transaction 实现uow.Manager
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context, tx uow.Tx) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, &gormTx{db: tx})
		}, &sql.TxOptions{Isolation: m.isolation})
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}

		metrics.RecordTxRetry()
		m.logger.Warn("事务冲突,准备重试",
			zap.Int("attempt", attempt),
			zap.NamedError("cause", apperrors.Cause(err)),
		)
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(m.newBackOff(), uint64(m.retry.MaxRetries)), ctx))
	if err != nil && isRetryable(err) {
		return apperrors.ErrConcurrentConflict.WithCause(err)
	}
	return err
}

func (m *TxManager) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if m.retry.InitialBackoff > 0 {
		b.InitialInterval = m.retry.InitialBackoff
	}
	if m.retry.MaxBackoff > 0 {
		b.MaxInterval = m.retry.MaxBackoff
	}
	// 次数由WithMaxRetries控制,不限制总时长
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

var _ uow.Manager = (*TxManager)(nil)

// gormTx 事务句柄
type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Books() book.Repository                 { return &bookRepository{db: t.db} }
func (t *gormTx) Orders() order.Repository               { return &orderRepository{db: t.db} }
func (t *gormTx) InventoryLogs() inventory.LogRepository { return &inventoryLogRepository{db: t.db} }

func parseIsolation(s string) sql.IsolationLevel {
	switch s {
	case "repeatable_read":
		return sql.LevelRepeatableRead
	case "serializable":
		return sql.LevelSerializable
	default:
		return sql.LevelReadCommitted
	}
}

