package order

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/domain/user"
	"github.com/bookstore/orderflow/pkg/tracing"
)

// CancelOrderUseCase 取消订单用例
// 只有PENDING订单可以取消:释放全部明细的库存,删除订单(明细级联删除)
type CancelOrderUseCase struct {
	txManager uow.Manager
	cache     Cache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(txManager uow.Manager, cache Cache, publisher EventPublisher, logger *zap.Logger) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		txManager: txManager,
		cache:     cache,
		publisher: publisher,
		logger:    nopIfNil(logger),
	}
}

// Execute 执行取消
func (uc *CancelOrderUseCase) Execute(ctx context.Context, principal user.Principal, orderID string) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CancelOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order_id", orderID))

	wf := newWorkflow("cancel", uc.logger)

	var cancelled *OrderResult
	err := uc.txManager.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
		wf.enter(StageValidating)
		o, err := loadOwnedForUpdate(ctx, tx, principal, orderID)
		if err != nil {
			return err
		}
		if !o.IsEditable() {
			return order.ErrOrderNotEditable
		}

		ids := o.BookIDs()
		sort.Strings(ids)
		books, err := lockBooks(ctx, tx.Books(), ids)
		if err != nil {
			return err
		}

		wf.enter(StageReserving)
		ledger := inventory.NewLedger()
		for _, id := range ids {
			item, _ := o.ItemByBook(id)
			if err := ledger.Release(books[id], item.Quantity); err != nil {
				return err
			}
		}

		wf.enter(StagePersisting)
		if err := writeStock(ctx, tx, o.ID, ledger); err != nil {
			return err
		}
		if err := tx.Orders().Delete(ctx, o.ID); err != nil {
			return err
		}

		cancelled = toResult(o)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "取消订单失败")
		return wf.fail(err)
	}
	wf.commit()

	invalidate(ctx, uc.cache, uc.logger, orderID)
	uc.logger.Info("订单已取消", zap.String("order_id", orderID), zap.String("user_id", principal.UserID))
	publish(ctx, uc.publisher, uc.logger, newEvent(EventOrderCancelled, cancelled))
	return nil
}
