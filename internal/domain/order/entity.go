package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookstore/orderflow/internal/domain/book"
)

// Status 订单状态
// 使用字符串存储,便于日志与数据库直接阅读
type Status string

const (
	StatusPending   Status = "PENDING"   // 待发货(可修改)
	StatusShipped   Status = "SHIPPED"   // 已发货
	StatusDelivered Status = "DELIVERED" // 已送达
)

// String 实现Stringer接口(方便日志输出)
func (s Status) String() string {
	return string(s)
}

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// 合法的状态转换规则
var transitions = map[Status][]Status{
	StatusPending:   {StatusShipped},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {}, // 终态
}

// Order 订单实体(聚合根)
// 说明:
// 1. Order是聚合根,OrderItem是子实体,只能通过Order的方法增删改
// 2. 同一订单内每本书至多一条明细(以BookID为键)
// 3. 总价由明细实时计算,不落库
type Order struct {
	ID        string
	UserID    string // 下单用户ID
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	items   []*OrderItem
	tracker changeTracker
}

// OrderItem 订单明细项
// 1. UnitPrice记录加入订单时的单价快照,图书改价不影响已有明细
// 2. 不直接关联Book对象,只保存BookID(避免跨聚合引用)
type OrderItem struct {
	ID        uint // 自增主键,持久化后由仓储回填
	OrderID   string
	BookID    string
	Quantity  int
	UnitPrice decimal.Decimal
}

// TotalPrice 明细小计 = 数量 × 单价
func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// New 创建新订单(工厂方法),初始状态为PENDING
func New(ownerID string) *Order {
	now := time.Now()
	return &Order{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Restore 从存储重建订单,不产生待持久化的变更
func Restore(id, userID string, status Status, createdAt, updatedAt time.Time, items []OrderItem) *Order {
	o := &Order{
		ID:        id,
		UserID:    userID,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		items:     make([]*OrderItem, 0, len(items)),
	}
	for i := range items {
		item := items[i]
		o.items = append(o.items, &item)
	}
	return o
}

// UpsertItem 新增或修改明细
// 已存在:修改数量;不存在:按图书当前价格快照新增
func (o *Order) UpsertItem(b *book.Book, quantity int) error {
	if !o.IsEditable() {
		return ErrOrderNotEditable
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if item := o.find(b.ID); item != nil {
		if item.Quantity != quantity {
			item.Quantity = quantity
			o.tracker.updated(b.ID)
		}
		return nil
	}

	o.items = append(o.items, &OrderItem{
		OrderID:   o.ID,
		BookID:    b.ID,
		Quantity:  quantity,
		UnitPrice: b.Price,
	})
	o.tracker.added(b.ID)
	return nil
}

// RemoveItem 删除指定图书的明细,返回是否存在
func (o *Order) RemoveItem(bookID string) (bool, error) {
	if !o.IsEditable() {
		return false, ErrOrderNotEditable
	}
	for idx, item := range o.items {
		if item.BookID == bookID {
			o.items = append(o.items[:idx], o.items[idx+1:]...)
			o.tracker.removed(item)
			return true, nil
		}
	}
	return false, nil
}

// Items 当前明细(副本),顺序无业务含义
func (o *Order) Items() []OrderItem {
	out := make([]OrderItem, 0, len(o.items))
	for _, item := range o.items {
		out = append(out, *item)
	}
	return out
}

// ItemByBook 按图书ID查找明细
func (o *Order) ItemByBook(bookID string) (OrderItem, bool) {
	if item := o.find(bookID); item != nil {
		return *item, true
	}
	return OrderItem{}, false
}

// BookIDs 明细中的图书ID
func (o *Order) BookIDs() []string {
	ids := make([]string, 0, len(o.items))
	for _, item := range o.items {
		ids = append(ids, item.BookID)
	}
	return ids
}

// TotalPrice 订单总价
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}

// IsEditable 只有PENDING状态的订单允许修改明细或取消
func (o *Order) IsEditable() bool {
	return o.Status == StatusPending
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.WithDetails(map[string]any{
			"from": o.Status,
			"to":   target,
		})
	}
	o.Status = target
	o.Touch()
	return nil
}

// Ship 发货
func (o *Order) Ship() error {
	return o.TransitionTo(StatusShipped)
}

// Deliver 确认送达
func (o *Order) Deliver() error {
	return o.TransitionTo(StatusDelivered)
}

// Touch 刷新更新时间
func (o *Order) Touch() {
	o.UpdatedAt = time.Now()
}

func (o *Order) find(bookID string) *OrderItem {
	for _, item := range o.items {
		if item.BookID == bookID {
			return item
		}
	}
	return nil
}
