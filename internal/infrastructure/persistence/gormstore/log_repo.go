package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/bookstore/orderflow/internal/domain/inventory"
)

type inventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository 创建库存日志仓储
func NewInventoryLogRepository(db *gorm.DB) inventory.LogRepository {
	return &inventoryLogRepository{db: db}
}

// Append 批量追加日志并回填ID
func (r *inventoryLogRepository) Append(ctx context.Context, logs []*inventory.Log) error {
	if len(logs) == 0 {
		return nil
	}

	models := make([]InventoryLogModel, len(logs))
	for i, l := range logs {
		models[i] = InventoryLogModel{
			BookID:      l.BookID,
			OrderID:     l.OrderID,
			ChangeType:  string(l.ChangeType),
			Quantity:    l.Quantity,
			BeforeStock: l.BeforeStock,
			AfterStock:  l.AfterStock,
			CreatedAt:   l.CreatedAt,
		}
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return translate(err, "写入库存日志")
	}

	for i, l := range logs {
		l.ID = models[i].ID
	}
	return nil
}

func (r *inventoryLogRepository) ListByOrderID(ctx context.Context, orderID string) ([]*inventory.Log, error) {
	var models []InventoryLogModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&models).Error; err != nil {
		return nil, translate(err, "查询库存日志")
	}

	logs := make([]*inventory.Log, len(models))
	for i, m := range models {
		logs[i] = &inventory.Log{
			ID:          m.ID,
			BookID:      m.BookID,
			OrderID:     m.OrderID,
			ChangeType:  inventory.ChangeType(m.ChangeType),
			Quantity:    m.Quantity,
			BeforeStock: m.BeforeStock,
			AfterStock:  m.AfterStock,
			CreatedAt:   m.CreatedAt,
		}
	}
	return logs, nil
}
