package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/domain/user"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// UpdateOrderStatusUseCase 管理员推进订单状态(PENDING → SHIPPED → DELIVERED)
type UpdateOrderStatusUseCase struct {
	txManager uow.Manager
	cache     Cache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewUpdateOrderStatusUseCase 创建状态变更用例
func NewUpdateOrderStatusUseCase(txManager uow.Manager, cache Cache, publisher EventPublisher, logger *zap.Logger) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{
		txManager: txManager,
		cache:     cache,
		publisher: publisher,
		logger:    nopIfNil(logger),
	}
}

// Execute 执行状态变更
func (uc *UpdateOrderStatusUseCase) Execute(ctx context.Context, principal user.Principal, orderID string, target order.Status) (*OrderResult, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if !target.Valid() {
		return nil, order.ErrInvalidStatus
	}

	var result *OrderResult
	err := uc.txManager.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		if err := tx.Orders().Touch(ctx, o); err != nil {
			return err
		}
		result = toResult(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, uc.cache, uc.logger, orderID)
	uc.logger.Info("订单状态变更",
		zap.String("order_id", orderID),
		zap.String("status", result.Status),
		zap.String("operator", principal.UserID),
	)
	publish(ctx, uc.publisher, uc.logger, newEvent(EventOrderStatusChanged, result))
	return result, nil
}
