package inventory

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstore/orderflow/internal/domain/book"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

func newBook(id string, stock int) *book.Book {
	return &book.Book{ID: id, Title: "Go语言实战", Price: decimal.NewFromInt(59), Stock: stock}
}

func TestLedger_Reserve(t *testing.T) {
	t.Run("库存充足时扣减", func(t *testing.T) {
		l := NewLedger()
		b := newBook("b1", 10)

		require.NoError(t, l.Reserve(b, 3))
		assert.Equal(t, 7, b.Stock)

		mv := l.Movements()
		require.Len(t, mv, 1)
		assert.Equal(t, Movement{BookID: "b1", ChangeType: ChangeTypeReserve, Quantity: 3, BeforeStock: 10, AfterStock: 7}, mv[0])
	})

	t.Run("恰好等于库存可以扣减到0", func(t *testing.T) {
		l := NewLedger()
		b := newBook("b1", 3)

		require.NoError(t, l.Reserve(b, 3))
		assert.Equal(t, 0, b.Stock)
	})

	t.Run("库存不足返回详情且不修改库存", func(t *testing.T) {
		l := NewLedger()
		b := newBook("b1", 2)

		err := l.Reserve(b, 3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientStock))

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, appErr.Code)
		assert.Equal(t, "b1", appErr.Details["book_id"])
		assert.Equal(t, 3, appErr.Details["requested"])
		assert.Equal(t, 2, appErr.Details["available"])

		assert.Equal(t, 2, b.Stock)
		assert.Empty(t, l.Movements())
	})

	t.Run("非正数量被拒绝", func(t *testing.T) {
		l := NewLedger()
		b := newBook("b1", 5)

		assert.True(t, errors.Is(l.Reserve(b, 0), ErrInvalidQuantity))
		assert.True(t, errors.Is(l.Reserve(b, -1), ErrInvalidQuantity))
		assert.Equal(t, 5, b.Stock)
	})
}

func TestLedger_Release(t *testing.T) {
	t.Run("释放增加库存", func(t *testing.T) {
		l := NewLedger()
		b := newBook("b1", 1)

		require.NoError(t, l.Release(b, 4))
		assert.Equal(t, 5, b.Stock)
	})

	t.Run("释放0不产生变动", func(t *testing.T) {
		l := NewLedger()
		b := newBook("b1", 1)

		require.NoError(t, l.Release(b, 0))
		assert.Empty(t, l.Movements())
		assert.Empty(t, l.NetChanges())
	})

	t.Run("负数被拒绝", func(t *testing.T) {
		l := NewLedger()
		assert.True(t, errors.Is(l.Release(newBook("b1", 1), -1), ErrInvalidQuantity))
	})

	t.Run("int溢出被拒绝", func(t *testing.T) {
		l := NewLedger()
		b := newBook("b1", math.MaxInt-1)

		err := l.Release(b, 2)
		assert.True(t, errors.Is(err, ErrInvalidQuantity))
		assert.Equal(t, math.MaxInt-1, b.Stock)
	})
}

func TestLedger_Adjust(t *testing.T) {
	l := NewLedger()
	b := newBook("b1", 7)

	require.NoError(t, l.Adjust(b, 2))
	assert.Equal(t, 5, b.Stock)

	require.NoError(t, l.Adjust(b, -5))
	assert.Equal(t, 10, b.Stock)

	require.NoError(t, l.Adjust(b, 0))
	assert.Len(t, l.Movements(), 2)

	err := l.Adjust(b, 11)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, 10, b.Stock)
}

func TestLedger_NetChanges(t *testing.T) {
	l := NewLedger()
	b1 := newBook("b1", 10)
	b2 := newBook("b2", 10)
	b3 := newBook("b3", 10)

	require.NoError(t, l.Reserve(b3, 2))
	require.NoError(t, l.Reserve(b1, 4))
	require.NoError(t, l.Release(b1, 1))
	require.NoError(t, l.Reserve(b2, 5))
	require.NoError(t, l.Release(b2, 5))

	// b2 净变化为0,不出现;结果按图书ID升序
	assert.Equal(t, []StockChange{
		{BookID: "b1", Delta: -3},
		{BookID: "b3", Delta: -2},
	}, l.NetChanges())
}

func TestLogsFor(t *testing.T) {
	l := NewLedger()
	b := newBook("b1", 10)
	require.NoError(t, l.Reserve(b, 3))
	require.NoError(t, l.Release(b, 1))

	logs := LogsFor("o1", l.Movements())
	require.Len(t, logs, 2)

	assert.Equal(t, ChangeTypeReserve, logs[0].ChangeType)
	assert.Equal(t, -3, logs[0].Quantity)
	assert.Equal(t, 10, logs[0].BeforeStock)
	assert.Equal(t, 7, logs[0].AfterStock)

	assert.Equal(t, ChangeTypeRelease, logs[1].ChangeType)
	assert.Equal(t, 1, logs[1].Quantity)
	assert.Equal(t, "o1", logs[1].OrderID)
}
