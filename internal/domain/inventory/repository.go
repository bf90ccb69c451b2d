package inventory

import "context"

// LogRepository 库存日志仓储接口
type LogRepository interface {
	// Append 批量追加日志
	Append(ctx context.Context, logs []*Log) error

	// ListByOrderID 查询指定订单的库存日志(按写入顺序)
	ListByOrderID(ctx context.Context, orderID string) ([]*Log, error)
}
