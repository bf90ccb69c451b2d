package order

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/domain/user"
	"github.com/bookstore/orderflow/pkg/tracing"
)

// PlaceOrderUseCase 下单用例
//
// 防止超卖的完整流程(全部在一个事务内):
//  1. 按ID升序 SELECT ... FOR UPDATE 锁定所有涉及的图书
//  2. 逐项检查库存,任何一项不足都不做任何扣减
//  3. 创建订单、通过账本预占库存、写明细
//  4. 条件更新库存(stock + delta >= 0),写库存日志
//  5. COMMIT释放锁
type PlaceOrderUseCase struct {
	txManager uow.Manager
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(txManager uow.Manager, publisher EventPublisher, logger *zap.Logger) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		txManager: txManager,
		publisher: publisher,
		logger:    nopIfNil(logger),
	}
}

// Execute 执行下单
// principal由鉴权层提供,这里只信任不校验
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, principal user.Principal, items []ItemInput) (*OrderResult, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "PlaceOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", principal.UserID),
		attribute.Int("item_count", len(items)),
	)

	wf := newWorkflow("place", uc.logger)
	if err := validateItems(items, false); err != nil {
		return nil, wf.fail(err)
	}

	var placed *order.Order
	err := uc.txManager.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
		wf.enter(StageValidating)
		books, err := lockBooks(ctx, tx.Books(), bookIDs(items))
		if err != nil {
			return err
		}

		// 所有项都检查完再动账本,避免第3项失败时前两项已扣减
		wf.enter(StageReserving)
		for _, item := range items {
			b := books[item.BookID]
			if b.Stock < item.Quantity {
				return inventory.InsufficientStock(b.ID, item.Quantity, b.Stock)
			}
		}

		wf.enter(StagePersisting)
		o := order.New(principal.UserID)
		ledger := inventory.NewLedger()
		for _, item := range items {
			b := books[item.BookID]
			if err := ledger.Reserve(b, item.Quantity); err != nil {
				return err
			}
			if err := o.UpsertItem(b, item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		if err := writeStock(ctx, tx, o.ID, ledger); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "下单失败")
		return nil, wf.fail(err)
	}
	wf.commit()

	result := toResult(placed)
	uc.logger.Info("订单创建成功",
		zap.String("order_id", result.ID),
		zap.String("user_id", principal.UserID),
		zap.String("total_price", result.TotalPrice),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)),
	)
	publish(ctx, uc.publisher, uc.logger, newEvent(EventOrderPlaced, result))
	return result, nil
}
