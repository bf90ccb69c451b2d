package inventory

import (
	"sort"

	"github.com/bookstore/orderflow/internal/domain/book"
)

// Movement 一次库存变动(内存中,随事务一起提交)
type Movement struct {
	BookID      string
	ChangeType  ChangeType
	Quantity    int // 变动数量,恒为正
	BeforeStock int
	AfterStock  int
}

// StockChange 单本图书在一次事务内的净变化
type StockChange struct {
	BookID string
	Delta  int // 负数表示扣减
}

// Ledger 库存账本
// 说明:
// 1. 图书库存只能经由Reserve/Release/Adjust修改
// 2. 账本只修改内存中的Book并记录变动,不做持久化
// 3. 一个Ledger对应一次事务,不可跨goroutine共享
type Ledger struct {
	movements []Movement
	net       map[string]int
}

// NewLedger 创建账本
func NewLedger() *Ledger {
	return &Ledger{net: make(map[string]int)}
}

// Reserve 预占库存
// quantity必须>0; 库存不足返回InsufficientStock(book_id, requested, available)
func (l *Ledger) Reserve(b *book.Book, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity.WithDetails(map[string]any{"book_id": b.ID, "quantity": quantity})
	}
	if b.Stock < quantity {
		return InsufficientStock(b.ID, quantity, b.Stock)
	}

	before := b.Stock
	if err := b.DecrStock(quantity); err != nil {
		return InsufficientStock(b.ID, quantity, b.Stock)
	}
	l.record(b.ID, ChangeTypeReserve, quantity, before, b.Stock, -quantity)
	return nil
}

// Release 释放库存
// quantity必须>=0,为0时不产生变动
func (l *Ledger) Release(b *book.Book, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity.WithDetails(map[string]any{"book_id": b.ID, "quantity": quantity})
	}
	if quantity == 0 {
		return nil
	}

	before := b.Stock
	if err := b.IncrStock(quantity); err != nil {
		// 只可能是int溢出
		return ErrInvalidQuantity.WithDetails(map[string]any{"book_id": b.ID, "quantity": quantity}).WithCause(err)
	}
	l.record(b.ID, ChangeTypeRelease, quantity, before, b.Stock, quantity)
	return nil
}

// Adjust 按差值调整库存(用于修改已有明细的数量)
// delta>0 等同于Reserve(delta),delta<0 等同于Release(-delta)
func (l *Ledger) Adjust(b *book.Book, delta int) error {
	switch {
	case delta > 0:
		return l.Reserve(b, delta)
	case delta < 0:
		return l.Release(b, -delta)
	default:
		return nil
	}
}

// Movements 按发生顺序返回全部变动
func (l *Ledger) Movements() []Movement {
	out := make([]Movement, len(l.movements))
	copy(out, l.movements)
	return out
}

// NetChanges 每本书的净变化,按图书ID升序,净变化为0的不返回
// 持久化时按此顺序写库存,与加锁顺序一致
func (l *Ledger) NetChanges() []StockChange {
	changes := make([]StockChange, 0, len(l.net))
	for id, delta := range l.net {
		if delta != 0 {
			changes = append(changes, StockChange{BookID: id, Delta: delta})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].BookID < changes[j].BookID })
	return changes
}

func (l *Ledger) record(bookID string, t ChangeType, quantity, before, after, delta int) {
	l.movements = append(l.movements, Movement{
		BookID:      bookID,
		ChangeType:  t,
		Quantity:    quantity,
		BeforeStock: before,
		AfterStock:  after,
	})
	l.net[bookID] += delta
}
