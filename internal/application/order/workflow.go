package order

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
	"github.com/bookstore/orderflow/pkg/metrics"
)

const tracerName = "bookstore/order"

// Stage 订单流程阶段
// VALIDATING → RESERVING → PERSISTING → COMMITTED,任一阶段失败进入FAILED
type Stage string

const (
	StageValidating Stage = "VALIDATING"
	StageReserving  Stage = "RESERVING"
	StagePersisting Stage = "PERSISTING"
	StageCommitted  Stage = "COMMITTED"
	StageFailed     Stage = "FAILED"
)

// Workflow 记录一次下单/改单/取消调用的阶段流转
// 失败时记录失败阶段,用于日志与指标;COMMITTED之前的失败都不会留下任何持久化结果
type Workflow struct {
	operation string
	stage     Stage
	failedAt  Stage
	start     time.Time
	logger    *zap.Logger
}

func newWorkflow(operation string, logger *zap.Logger) *Workflow {
	return &Workflow{
		operation: operation,
		stage:     StageValidating,
		start:     time.Now(),
		logger:    logger,
	}
}

// Stage 当前阶段
func (w *Workflow) Stage() Stage {
	return w.stage
}

// FailedAt 失败时所处的阶段,未失败为空
func (w *Workflow) FailedAt() Stage {
	return w.failedAt
}

func (w *Workflow) enter(s Stage) {
	w.stage = s
	w.logger.Debug("订单流程阶段", zap.String("operation", w.operation), zap.String("stage", string(s)))
}

func (w *Workflow) commit() {
	w.enter(StageCommitted)
	metrics.RecordOrderWorkflow(w.operation, "success", time.Since(w.start).Seconds())
}

// fail 记录失败并把未知错误统一包装为数据库错误(原始错误只写日志)
func (w *Workflow) fail(err error) error {
	w.failedAt = w.stage
	w.stage = StageFailed
	metrics.RecordOrderWorkflow(w.operation, string(w.failedAt), time.Since(w.start).Seconds())

	if !apperrors.IsAppError(err) {
		w.logger.Error("订单流程存储异常",
			zap.String("operation", w.operation),
			zap.String("stage", string(w.failedAt)),
			zap.Error(err),
		)
		return apperrors.ErrDatabaseError.WithCause(err)
	}

	appErr := apperrors.GetAppError(err)
	if appErr.Code >= apperrors.ErrCodeInternal {
		w.logger.Error("订单流程失败",
			zap.String("operation", w.operation),
			zap.String("stage", string(w.failedAt)),
			zap.Int("code", appErr.Code),
			zap.NamedError("cause", apperrors.Cause(err)),
		)
	} else {
		w.logger.Info("订单流程被拒绝",
			zap.String("operation", w.operation),
			zap.String("stage", string(w.failedAt)),
			zap.Int("code", appErr.Code),
			zap.Any("details", appErr.Details),
		)
	}
	return err
}

// validateItems 请求级校验
// allowEmpty: 改单允许空列表(表示删除全部明细)
func validateItems(items []ItemInput, allowEmpty bool) error {
	if len(items) == 0 && !allowEmpty {
		return order.ErrEmptyItems
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.BookID == "" {
			return apperrors.ErrInvalidParams.WithMessage("图书ID不能为空")
		}
		if item.Quantity <= 0 {
			return order.ErrInvalidQuantity.WithDetails(map[string]any{"book_id": item.BookID, "quantity": item.Quantity})
		}
		if _, dup := seen[item.BookID]; dup {
			return order.ErrDuplicateBook.WithDetails(map[string]any{"book_id": item.BookID})
		}
		seen[item.BookID] = struct{}{}
	}
	return nil
}

// lockBooks 一次性锁定所有涉及的图书(去重后按ID升序)
// 任一图书不存在即返回BookNotFound,按传入顺序报告第一个
func lockBooks(ctx context.Context, repo book.Repository, ids []string) (map[string]*book.Book, error) {
	idSet := make(map[string]struct{}, len(ids))
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := idSet[id]; !ok {
			idSet[id] = struct{}{}
			sorted = append(sorted, id)
		}
	}
	sort.Strings(sorted)

	books, err := repo.LockByIDs(ctx, sorted)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := books[id]; !ok {
			return nil, book.NotFound(id)
		}
	}
	return books, nil
}

// writeStock 持久化账本:按图书ID升序写库存净变化,再追加库存日志
// 条件更新(stock + delta >= 0)作为锁之外的第二道防线
func writeStock(ctx context.Context, tx uow.Tx, orderID string, ledger *inventory.Ledger) error {
	for _, change := range ledger.NetChanges() {
		if err := tx.Books().UpdateStock(ctx, change.BookID, change.Delta); err != nil {
			return err
		}
	}

	logs := inventory.LogsFor(orderID, ledger.Movements())
	if len(logs) == 0 {
		return nil
	}
	return tx.InventoryLogs().Append(ctx, logs)
}

func bookIDs(items []ItemInput) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.BookID
	}
	return ids
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
