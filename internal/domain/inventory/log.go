package inventory

import "time"

// Log 库存变更日志
// 只增不改,与库存变更在同一事务内写入,用于审计与对账
type Log struct {
	ID          uint
	BookID      string
	OrderID     string
	ChangeType  ChangeType
	Quantity    int // 正数=增加,负数=减少
	BeforeStock int
	AfterStock  int
	CreatedAt   time.Time
}

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeReserve ChangeType = "RESERVE" // 下单/加量预占
	ChangeTypeRelease ChangeType = "RELEASE" // 删项/减量/取消释放
)

// LogsFor 将账本中的变动转换为订单关联的日志
func LogsFor(orderID string, movements []Movement) []*Log {
	now := time.Now()
	logs := make([]*Log, 0, len(movements))
	for _, m := range movements {
		qty := m.Quantity
		if m.ChangeType == ChangeTypeReserve {
			qty = -qty
		}
		logs = append(logs, &Log{
			BookID:      m.BookID,
			OrderID:     orderID,
			ChangeType:  m.ChangeType,
			Quantity:    qty,
			BeforeStock: m.BeforeStock,
			AfterStock:  m.AfterStock,
			CreatedAt:   now,
		})
	}
	return logs
}
