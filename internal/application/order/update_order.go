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

// UpdateOrderUseCase 改单用例(整体替换明细)
//
// 提交的明细列表完全取代原有明细:
//   - 原有且仍在:按差值调整库存,再改数量
//   - 新出现:检查库存后预占,新增明细
//   - 原有但未提交:释放库存,删除明细
//
// 用同一列表重复调用,第二次所有差值为0,结果不变
type UpdateOrderUseCase struct {
	txManager uow.Manager
	cache     Cache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewUpdateOrderUseCase 创建改单用例
func NewUpdateOrderUseCase(txManager uow.Manager, cache Cache, publisher EventPublisher, logger *zap.Logger) *UpdateOrderUseCase {
	return &UpdateOrderUseCase{
		txManager: txManager,
		cache:     cache,
		publisher: publisher,
		logger:    nopIfNil(logger),
	}
}

// Execute 执行改单
func (uc *UpdateOrderUseCase) Execute(ctx context.Context, principal user.Principal, orderID string, items []ItemInput) (*OrderResult, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.Int("item_count", len(items)),
	)

	wf := newWorkflow("update", uc.logger)
	if err := validateItems(items, true); err != nil {
		return nil, wf.fail(err)
	}

	var updated *order.Order
	err := uc.txManager.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
		wf.enter(StageValidating)
		o, err := loadOwnedForUpdate(ctx, tx, principal, orderID)
		if err != nil {
			return err
		}
		if !o.IsEditable() {
			return order.ErrOrderNotEditable
		}

		// 新旧两个集合涉及的图书一起按ID升序加锁
		books, err := lockBooks(ctx, tx.Books(), append(bookIDs(items), o.BookIDs()...))
		if err != nil {
			return err
		}

		wf.enter(StageReserving)
		ledger := inventory.NewLedger()
		processed := make(map[string]bool, len(items))
		for _, item := range items {
			b := books[item.BookID]
			if existing, ok := o.ItemByBook(item.BookID); ok {
				// 只对差值检查库存
				if err := ledger.Adjust(b, item.Quantity-existing.Quantity); err != nil {
					return err
				}
			} else {
				if err := ledger.Reserve(b, item.Quantity); err != nil {
					return err
				}
			}
			if err := o.UpsertItem(b, item.Quantity); err != nil {
				return err
			}
			processed[item.BookID] = true
		}

		var omitted []string
		for _, id := range o.BookIDs() {
			if !processed[id] {
				omitted = append(omitted, id)
			}
		}
		sort.Strings(omitted)
		for _, id := range omitted {
			existing, _ := o.ItemByBook(id)
			if err := ledger.Release(books[id], existing.Quantity); err != nil {
				return err
			}
			if _, err := o.RemoveItem(id); err != nil {
				return err
			}
		}

		wf.enter(StagePersisting)
		if err := tx.Orders().SaveItems(ctx, o); err != nil {
			return err
		}
		if err := writeStock(ctx, tx, o.ID, ledger); err != nil {
			return err
		}
		o.Touch()
		if err := tx.Orders().Touch(ctx, o); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "改单失败")
		return nil, wf.fail(err)
	}
	wf.commit()

	result := toResult(updated)
	invalidate(ctx, uc.cache, uc.logger, orderID)
	uc.logger.Info("订单修改成功",
		zap.String("order_id", orderID),
		zap.Int("item_count", len(result.Items)),
		zap.String("total_price", result.TotalPrice),
	)
	publish(ctx, uc.publisher, uc.logger, newEvent(EventOrderUpdated, result))
	return result, nil
}

// loadOwnedForUpdate 加锁读取订单并校验归属
// 不存在与不属于当前用户返回同一个错误
func loadOwnedForUpdate(ctx context.Context, tx uow.Tx, principal user.Principal, orderID string) (*order.Order, error) {
	o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(principal.UserID) {
		return nil, order.ErrOrderNotFoundOrUnauthorized
	}
	return o, nil
}
