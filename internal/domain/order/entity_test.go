package order

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstore/orderflow/internal/domain/book"
)

func testBook(id string, price string) *book.Book {
	return &book.Book{ID: id, Price: decimal.RequireFromString(price), Stock: 100}
}

func TestNew(t *testing.T) {
	o := New("u1")

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.IsEditable())
	assert.Empty(t, o.Items())
	assert.True(t, o.PendingChanges().Empty())
}

func TestOrder_UpsertItem(t *testing.T) {
	t.Run("新增明细时快照单价", func(t *testing.T) {
		o := New("u1")
		b := testBook("b1", "12.50")

		require.NoError(t, o.UpsertItem(b, 2))

		// 之后改价不影响已有明细
		require.NoError(t, b.UpdatePrice(decimal.NewFromInt(99)))

		item, ok := o.ItemByBook("b1")
		require.True(t, ok)
		assert.Equal(t, o.ID, item.OrderID)
		assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("12.50")))
		assert.True(t, item.TotalPrice().Equal(decimal.NewFromInt(25)))
	})

	t.Run("已存在时只修改数量", func(t *testing.T) {
		o := New("u1")
		b := testBook("b1", "10")
		require.NoError(t, o.UpsertItem(b, 2))
		require.NoError(t, o.UpsertItem(b, 5))

		items := o.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 5, items[0].Quantity)
	})

	t.Run("非法数量被拒绝", func(t *testing.T) {
		o := New("u1")
		err := o.UpsertItem(testBook("b1", "10"), 0)
		assert.True(t, errors.Is(err, ErrInvalidQuantity))
	})

	t.Run("已发货订单不可修改", func(t *testing.T) {
		o := New("u1")
		require.NoError(t, o.Ship())

		err := o.UpsertItem(testBook("b1", "10"), 1)
		assert.True(t, errors.Is(err, ErrOrderNotEditable))

		_, err = o.RemoveItem("b1")
		assert.True(t, errors.Is(err, ErrOrderNotEditable))
	})
}

func TestOrder_TotalPrice(t *testing.T) {
	o := New("u1")
	require.NoError(t, o.UpsertItem(testBook("b1", "10.10"), 3))
	require.NoError(t, o.UpsertItem(testBook("b2", "0.30"), 1))

	assert.Equal(t, "30.60", o.TotalPrice().StringFixed(2))
}

func TestOrder_PendingChanges(t *testing.T) {
	persisted := func() *Order {
		return Restore("o1", "u1", StatusPending, time.Now(), time.Now(), []OrderItem{
			{ID: 1, OrderID: "o1", BookID: "b1", Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
			{ID: 2, OrderID: "o1", BookID: "b2", Quantity: 4, UnitPrice: decimal.NewFromInt(20)},
		})
	}

	t.Run("重建的订单没有变更", func(t *testing.T) {
		assert.True(t, persisted().PendingChanges().Empty())
	})

	t.Run("新增_修改_删除分别记录", func(t *testing.T) {
		o := persisted()
		require.NoError(t, o.UpsertItem(testBook("b1", "10"), 5))
		require.NoError(t, o.UpsertItem(testBook("b3", "30"), 1))
		removed, err := o.RemoveItem("b2")
		require.NoError(t, err)
		assert.True(t, removed)

		c := o.PendingChanges()
		require.Len(t, c.Updated, 1)
		assert.Equal(t, "b1", c.Updated[0].BookID)
		require.Len(t, c.Added, 1)
		assert.Equal(t, "b3", c.Added[0].BookID)
		require.Len(t, c.Removed, 1)
		assert.Equal(t, uint(2), c.Removed[0].ID)
	})

	t.Run("数量不变不算修改", func(t *testing.T) {
		o := persisted()
		require.NoError(t, o.UpsertItem(testBook("b1", "10"), 3))
		assert.True(t, o.PendingChanges().Empty())
	})

	t.Run("新增后又删除相互抵消", func(t *testing.T) {
		o := persisted()
		require.NoError(t, o.UpsertItem(testBook("b9", "1"), 1))
		_, err := o.RemoveItem("b9")
		require.NoError(t, err)
		assert.True(t, o.PendingChanges().Empty())
	})

	t.Run("修改后又删除只记删除", func(t *testing.T) {
		o := persisted()
		require.NoError(t, o.UpsertItem(testBook("b1", "10"), 9))
		_, err := o.RemoveItem("b1")
		require.NoError(t, err)

		c := o.PendingChanges()
		assert.Empty(t, c.Updated)
		require.Len(t, c.Removed, 1)
		assert.Equal(t, "b1", c.Removed[0].BookID)
	})

	t.Run("删除不存在的明细", func(t *testing.T) {
		o := persisted()
		removed, err := o.RemoveItem("nope")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("MarkPersisted清空变更", func(t *testing.T) {
		o := persisted()
		require.NoError(t, o.UpsertItem(testBook("b3", "30"), 1))
		o.MarkPersisted()
		assert.True(t, o.PendingChanges().Empty())
	})
}

func TestOrder_StatusTransition(t *testing.T) {
	o := New("u1")

	assert.False(t, o.CanTransitionTo(StatusDelivered), "不能跳过发货")
	err := o.TransitionTo(StatusDelivered)
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))

	require.NoError(t, o.Ship())
	assert.False(t, o.IsEditable())
	require.NoError(t, o.Deliver())

	assert.True(t, errors.Is(o.Ship(), ErrInvalidStatusTransition), "已送达为终态")
}
