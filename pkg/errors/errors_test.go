package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_DerivedMatchesSentinel(t *testing.T) {
	sentinel := New(ErrCodeInsufficientStock, "库存不足")

	t.Run("WithDetails派生后仍能匹配", func(t *testing.T) {
		err := sentinel.WithDetails(map[string]any{"book_id": "b-1", "available": 2})

		assert.True(t, errors.Is(err, sentinel))
		assert.Equal(t, ErrCodeInsufficientStock, err.Code)
		assert.Equal(t, "b-1", err.Details["book_id"])
		assert.Nil(t, sentinel.Details, "预定义错误不应被修改")
	})

	t.Run("多级派生沿链匹配", func(t *testing.T) {
		err := sentinel.WithDetails(map[string]any{"a": 1}).WithCause(fmt.Errorf("boom"))

		assert.True(t, errors.Is(err, sentinel))
		assert.Equal(t, 1, err.Details["a"])
	})

	t.Run("被fmt包装后仍能匹配", func(t *testing.T) {
		err := fmt.Errorf("下单失败: %w", sentinel.WithDetails(nil))

		assert.True(t, errors.Is(err, sentinel))
		appErr := GetAppError(err)
		assert.Equal(t, ErrCodeInsufficientStock, appErr.Code)
	})

	t.Run("不同预定义错误不匹配", func(t *testing.T) {
		other := New(ErrCodeInsufficientStock, "库存不足")
		assert.False(t, errors.Is(sentinel.WithDetails(nil), other))
	})
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, "查询失败")

	assert.Equal(t, ErrCodeInternal, err.Code)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetAppError(t *testing.T) {
	t.Run("普通错误包装为内部错误", func(t *testing.T) {
		appErr := GetAppError(fmt.Errorf("raw"))
		require.NotNil(t, appErr)
		assert.Equal(t, ErrCodeInternal, appErr.Code)
	})

	t.Run("AppError原样返回", func(t *testing.T) {
		appErr := GetAppError(ErrForbidden)
		assert.Same(t, ErrForbidden, appErr)
	})
}

func TestCause(t *testing.T) {
	root := fmt.Errorf("deadlock found")

	assert.Equal(t, root, Cause(ErrDatabaseError.WithCause(root)))
	assert.Nil(t, Cause(ErrForbidden))
	assert.Equal(t, root, Cause(root))
}
