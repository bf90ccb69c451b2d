package memory

import (
	"context"
	"sort"

	"github.com/bookstore/orderflow/internal/domain/order"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

type orderRepo struct {
	run func(func(*state) error) error
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.run(func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return apperrors.ErrConstraintViolation.WithMessage("订单已存在")
		}
		st.orders[o.ID] = &orderRecord{
			id:        o.ID,
			userID:    o.UserID,
			status:    o.Status,
			createdAt: o.CreatedAt,
			updatedAt: o.UpdatedAt,
			items:     make(map[uint]order.OrderItem),
		}
		if err := applyItemChanges(st, o); err != nil {
			return err
		}
		o.MarkPersisted()
		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var found *order.Order
	err := r.run(func(st *state) error {
		rec, ok := st.orders[id]
		if !ok {
			return order.ErrOrderNotFoundOrUnauthorized
		}
		found = restore(rec)
		return nil
	})
	return found, err
}

// FindByIDForUpdate 内存存储由全局锁串行化,与FindByID相同
func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id string) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepo) SaveItems(ctx context.Context, o *order.Order) error {
	return r.run(func(st *state) error {
		if _, ok := st.orders[o.ID]; !ok {
			return order.ErrOrderNotFoundOrUnauthorized
		}
		if err := applyItemChanges(st, o); err != nil {
			return err
		}
		o.MarkPersisted()
		return nil
	})
}

func (r *orderRepo) Touch(ctx context.Context, o *order.Order) error {
	return r.run(func(st *state) error {
		rec, ok := st.orders[o.ID]
		if !ok {
			return order.ErrOrderNotFoundOrUnauthorized
		}
		rec.status = o.Status
		rec.updatedAt = o.UpdatedAt
		return nil
	})
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	return r.run(func(st *state) error {
		if _, ok := st.orders[id]; !ok {
			return order.ErrOrderNotFoundOrUnauthorized
		}
		delete(st.orders, id)
		return nil
	})
}

func (r *orderRepo) ListByUserID(ctx context.Context, userID string, page, pageSize int) ([]*order.Order, int64, error) {
	var (
		orders []*order.Order
		total  int64
	)
	err := r.run(func(st *state) error {
		matched := make([]*orderRecord, 0)
		for _, rec := range st.orders {
			if rec.userID == userID {
				matched = append(matched, rec)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].createdAt.Equal(matched[j].createdAt) {
				return matched[i].id < matched[j].id
			}
			return matched[i].createdAt.After(matched[j].createdAt)
		})

		total = int64(len(matched))
		start, end := paginate(page, pageSize, len(matched))
		for _, rec := range matched[start:end] {
			orders = append(orders, restore(rec))
		}
		return nil
	})
	return orders, total, err
}

// applyItemChanges 按 删除 → 修改 → 新增 的顺序落库
// 模拟 (order_id, book_id) 唯一索引与 book_id 外键约束
func applyItemChanges(st *state, o *order.Order) error {
	rec := st.orders[o.ID]
	changes := o.PendingChanges()

	for _, item := range changes.Removed {
		delete(rec.items, item.ID)
	}

	for _, item := range changes.Updated {
		existing, ok := rec.items[item.ID]
		if !ok {
			return apperrors.ErrConstraintViolation.WithMessage("订单明细不存在")
		}
		existing.Quantity = item.Quantity
		rec.items[item.ID] = existing
	}

	for _, item := range changes.Added {
		if _, ok := st.books[item.BookID]; !ok {
			return apperrors.ErrConstraintViolation
		}
		for _, existing := range rec.items {
			if existing.BookID == item.BookID {
				return apperrors.ErrConstraintViolation
			}
		}
		st.nextItemID++
		item.ID = st.nextItemID
		item.OrderID = o.ID
		rec.items[item.ID] = *item
	}
	return nil
}

func restore(rec *orderRecord) *order.Order {
	items := make([]order.OrderItem, 0, len(rec.items))
	for _, item := range rec.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return order.Restore(rec.id, rec.userID, rec.status, rec.createdAt, rec.updatedAt, items)
}
