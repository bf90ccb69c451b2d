package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookstore/orderflow/internal/domain/order"
)

// orderRepository 订单仓储实现
// 明细不走GORM关联自动保存,而是按聚合记录的变更显式落库:
// 删除 → 修改 → 新增,同一本书先删后加时不会撞上(order_id, book_id)唯一索引
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	db := r.db.WithContext(ctx)
	model := &OrderModel{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return translate(err, "创建订单")
	}

	if err := applyItemChanges(db, o); err != nil {
		return err
	}
	o.MarkPersisted()
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate SELECT ... FOR UPDATE锁定订单行
// 对同一订单的改单/取消/状态变更由此串行化
func (r *orderRepository) FindByIDForUpdate(ctx context.Context, id string) (*order.Order, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *orderRepository) find(db *gorm.DB, id string) (*order.Order, error) {
	var model OrderModel
	err := db.Preload("Items", orderByID).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFoundOrUnauthorized
		}
		return nil, translate(err, "查询订单")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) SaveItems(ctx context.Context, o *order.Order) error {
	if err := applyItemChanges(r.db.WithContext(ctx), o); err != nil {
		return err
	}
	o.MarkPersisted()
	return nil
}

// Touch 写回状态与更新时间
// 不检查RowsAffected:MySQL在值未变化时返回0,订单行已在同一事务中锁定
func (r *orderRepository) Touch(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":     o.Status.String(),
			"updated_at": o.UpdatedAt,
		}).Error
	return translate(err, "更新订单")
}

// Delete 删除订单及其明细
// 明细由外键ON DELETE CASCADE删除,这里显式删除以兼容未建外键的库
func (r *orderRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&OrderItemModel{}).Error; err != nil {
		return translate(err, "删除订单明细")
	}

	result := db.Where("id = ?", id).Delete(&OrderModel{})
	if result.Error != nil {
		return translate(result.Error, "删除订单")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFoundOrUnauthorized
	}
	return nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string, page, pageSize int) ([]*order.Order, int64, error) {
	var (
		models []OrderModel
		total  int64
	)

	query := r.db.WithContext(ctx).Model(&OrderModel{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "查询订单总数")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items", orderByID).
		Order("created_at DESC").
		Order("id").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, translate(err, "查询订单列表")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

// applyItemChanges 按 删除 → 修改 → 新增 的顺序落库,新增明细回填自增ID
func applyItemChanges(db *gorm.DB, o *order.Order) error {
	changes := o.PendingChanges()

	if len(changes.Removed) > 0 {
		ids := make([]uint, len(changes.Removed))
		for i, item := range changes.Removed {
			ids[i] = item.ID
		}
		if err := db.Where("order_id = ? AND id IN ?", o.ID, ids).Delete(&OrderItemModel{}).Error; err != nil {
			return translate(err, "删除订单明细")
		}
	}

	for _, item := range changes.Updated {
		err := db.Model(&OrderItemModel{}).
			Where("id = ? AND order_id = ?", item.ID, o.ID).
			Update("quantity", item.Quantity).Error
		if err != nil {
			return translate(err, "修改订单明细")
		}
	}

	if len(changes.Added) > 0 {
		models := make([]OrderItemModel, len(changes.Added))
		for i, item := range changes.Added {
			models[i] = OrderItemModel{
				OrderID:   o.ID,
				BookID:    item.BookID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
		}
		if err := db.Create(&models).Error; err != nil {
			return translate(err, "新增订单明细")
		}
		for i, item := range changes.Added {
			item.ID = models[i].ID
			item.OrderID = o.ID
		}
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return order.Restore(model.ID, model.UserID, order.Status(model.Status), model.CreatedAt, model.UpdatedAt, items)
}
