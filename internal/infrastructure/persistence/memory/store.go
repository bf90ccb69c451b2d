// Package memory 内存版事务存储
//
// 用于单元测试与本地演示(database.driver=memory):
// 全局互斥锁串行化事务,开始时复制一份状态快照,fn成功则整体替换,失败则丢弃。
// 与gormstore保持相同的约束语义(唯一键、外键、库存非负)。
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/domain/user"
)

type orderRecord struct {
	id        string
	userID    string
	status    order.Status
	createdAt time.Time
	updatedAt time.Time
	items     map[uint]order.OrderItem
}

func (r *orderRecord) clone() *orderRecord {
	c := *r
	c.items = make(map[uint]order.OrderItem, len(r.items))
	for id, item := range r.items {
		c.items[id] = item
	}
	return &c
}

type state struct {
	books      map[string]*book.Book
	users      map[string]*user.User
	orders     map[string]*orderRecord
	logs       []*inventory.Log
	nextItemID uint
	nextLogID  uint
}

func newState() *state {
	return &state{
		books:  make(map[string]*book.Book),
		users:  make(map[string]*user.User),
		orders: make(map[string]*orderRecord),
	}
}

func (s *state) clone() *state {
	c := &state{
		books:      make(map[string]*book.Book, len(s.books)),
		users:      make(map[string]*user.User, len(s.users)),
		orders:     make(map[string]*orderRecord, len(s.orders)),
		logs:       append([]*inventory.Log(nil), s.logs...),
		nextItemID: s.nextItemID,
		nextLogID:  s.nextLogID,
	}
	for id, b := range s.books {
		c.books[id] = b.Clone()
	}
	for id, u := range s.users {
		cu := *u
		c.users[id] = &cu
	}
	for id, o := range s.orders {
		c.orders[id] = o.clone()
	}
	return c
}

// Store 内存存储
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore 创建空的内存存储
func NewStore() *Store {
	return &Store{st: newState()}
}

// Transaction 实现uow.Manager
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, tx uow.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, &memTx{st: snapshot}); err != nil {
		return err
	}
	s.st = snapshot
	return nil
}

// Ping 健康检查
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close 内存存储无需释放资源
func (s *Store) Close() error {
	return nil
}

// Books 事务外的图书仓储
func (s *Store) Books() book.Repository {
	return &bookRepo{run: s.locked}
}

// Orders 事务外的订单仓储
func (s *Store) Orders() order.Repository {
	return &orderRepo{run: s.locked}
}

// Users 用户仓储
func (s *Store) Users() user.Repository {
	return &userRepo{run: s.locked}
}

// InventoryLogs 事务外的库存日志仓储
func (s *Store) InventoryLogs() inventory.LogRepository {
	return &logRepo{run: s.locked}
}

// locked 事务外的单次操作:持锁直接作用于当前状态
// 写操作失败时可能已修改部分状态,因此同样走快照
func (s *Store) locked(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(snapshot); err != nil {
		return err
	}
	s.st = snapshot
	return nil
}

var _ uow.Manager = (*Store)(nil)

// memTx 事务句柄,仓储直接作用于快照(锁已由Transaction持有)
type memTx struct {
	st *state
}

func (t *memTx) run(fn func(*state) error) error {
	return fn(t.st)
}

func (t *memTx) Books() book.Repository                 { return &bookRepo{run: t.run} }
func (t *memTx) Orders() order.Repository               { return &orderRepo{run: t.run} }
func (t *memTx) InventoryLogs() inventory.LogRepository { return &logRepo{run: t.run} }

func paginate(page, pageSize, total int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
