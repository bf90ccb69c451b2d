package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/domain/user"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

func seedBook(t *testing.T, s *Store, isbn string, stock int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, "Go程序设计语言", "Donovan", "", decimal.NewFromInt(79), book.CategoryAcademic, stock, "admin")
	require.NoError(t, s.Books().Create(context.Background(), b))
	return b
}

func TestStore_TransactionCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, "9787111558422", 10)

	var orderID string
	err := s.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
		o := order.New("u1")
		orderID = o.ID
		if err := o.UpsertItem(b, 2); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		return tx.Books().UpdateStock(ctx, b.ID, -2)
	})
	require.NoError(t, err)

	got, err := s.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)

	o, err := s.Orders().FindByID(ctx, orderID)
	require.NoError(t, err)
	items := o.Items()
	require.Len(t, items, 1)
	assert.NotZero(t, items[0].ID, "明细ID应由存储分配")
	assert.Equal(t, orderID, items[0].OrderID)
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, "9787111558422", 10)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
		o := order.New("u1")
		if err := o.UpsertItem(b, 2); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		if err := tx.Books().UpdateStock(ctx, b.ID, -2); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock, "失败事务不应留下库存变化")

	orders, total, err := s.Orders().ListByUserID(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestStore_CanceledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestBookRepo(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, "9787111558422", 3)

	t.Run("ISBN唯一", func(t *testing.T) {
		dup := book.NewBook("9787111558422", "另一本", "x", "", decimal.NewFromInt(1), book.CategoryPoetry, 1, "admin")
		err := s.Books().Create(ctx, dup)
		assert.True(t, errors.Is(err, book.ErrISBNDuplicate))
	})

	t.Run("返回副本_修改不影响存储", func(t *testing.T) {
		got, err := s.Books().FindByID(ctx, b.ID)
		require.NoError(t, err)
		got.Stock = 999

		again, err := s.Books().FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, again.Stock)
	})

	t.Run("条件扣减_库存不能为负", func(t *testing.T) {
		err := s.Books().UpdateStock(ctx, b.ID, -4)
		assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))

		err = s.Books().UpdateStock(ctx, "missing", -1)
		assert.True(t, errors.Is(err, book.ErrBookNotFound))
	})

	t.Run("批量锁定只返回存在的图书", func(t *testing.T) {
		found, err := s.Books().LockByIDs(ctx, []string{b.ID, "missing"})
		require.NoError(t, err)
		assert.Len(t, found, 1)
		assert.Contains(t, found, b.ID)
	})

	t.Run("按分类过滤", func(t *testing.T) {
		seedBook(t, s, "9787115428028", 1)
		poetry := book.NewBook("1234567890", "唐诗三百首", "蘅塘退士", "", decimal.NewFromInt(20), book.CategoryPoetry, 1, "admin")
		require.NoError(t, s.Books().Create(ctx, poetry))

		books, total, err := s.Books().List(ctx, book.ListParams{Page: 1, PageSize: 10, Category: book.CategoryPoetry})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, books, 1)
		assert.Equal(t, "唐诗三百首", books[0].Title)
	})
}

func TestOrderRepo_ItemConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := seedBook(t, s, "9787111558422", 10)

	t.Run("引用不存在的图书违反外键", func(t *testing.T) {
		err := s.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
			o := order.New("u1")
			ghost := &book.Book{ID: "ghost", Price: decimal.NewFromInt(1)}
			if err := o.UpsertItem(ghost, 1); err != nil {
				return err
			}
			return tx.Orders().Create(ctx, o)
		})
		assert.True(t, errors.Is(err, apperrors.ErrConstraintViolation))
	})

	t.Run("先删后加同一本书不冲突", func(t *testing.T) {
		o := order.New("u1")
		require.NoError(t, o.UpsertItem(b, 1))
		require.NoError(t, s.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
			return tx.Orders().Create(ctx, o)
		}))

		require.NoError(t, s.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
			loaded, err := tx.Orders().FindByIDForUpdate(ctx, o.ID)
			if err != nil {
				return err
			}
			if _, err := loaded.RemoveItem(b.ID); err != nil {
				return err
			}
			if err := loaded.UpsertItem(b, 4); err != nil {
				return err
			}
			return tx.Orders().SaveItems(ctx, loaded)
		}))

		got, err := s.Orders().FindByID(ctx, o.ID)
		require.NoError(t, err)
		items := got.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 4, items[0].Quantity)
	})

	t.Run("删除订单级联删除明细", func(t *testing.T) {
		o := order.New("u2")
		require.NoError(t, o.UpsertItem(b, 1))
		require.NoError(t, s.Transaction(ctx, func(ctx context.Context, tx uow.Tx) error {
			if err := tx.Orders().Create(ctx, o); err != nil {
				return err
			}
			return tx.Orders().Delete(ctx, o.ID)
		}))

		_, err := s.Orders().FindByID(ctx, o.ID)
		assert.True(t, errors.Is(err, order.ErrOrderNotFoundOrUnauthorized))
	})
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := user.NewUser("alice@example.com", "hash", "alice", user.RoleUser)
	require.NoError(t, s.Users().Create(ctx, u))

	err := s.Users().Create(ctx, user.NewUser("ALICE@example.com", "hash", "alice2", user.RoleUser))
	assert.True(t, errors.Is(err, apperrors.ErrEmailDuplicate))

	got, err := s.Users().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Users().FindByID(ctx, "nobody")
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestLogRepo(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	logs := []*inventory.Log{
		{BookID: "b1", OrderID: "o1", ChangeType: inventory.ChangeTypeReserve, Quantity: -2, BeforeStock: 5, AfterStock: 3},
		{BookID: "b1", OrderID: "o2", ChangeType: inventory.ChangeTypeReserve, Quantity: -1, BeforeStock: 3, AfterStock: 2},
	}
	require.NoError(t, s.InventoryLogs().Append(ctx, logs))

	got, err := s.InventoryLogs().ListByOrderID(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, 3, got[0].AfterStock)
}
