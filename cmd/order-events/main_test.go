package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	orderapp "github.com/bookstore/orderflow/internal/application/order"
)

func TestHandleEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handle := handleEvent(zap.New(core))

	body, err := json.Marshal(orderapp.Event{
		Type:       orderapp.EventOrderPlaced,
		OrderID:    "o-1",
		UserID:     "u-1",
		Status:     "PENDING",
		Items:      []orderapp.ItemResult{{BookID: "b-1", Quantity: 3, UnitPrice: "12.60", TotalPrice: "37.80"}},
		TotalPrice: "37.80",
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, handle(context.Background(), "order.placed", body))
	entries := logs.FilterMessage("订单事件").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "o-1", fields["order_id"])
	assert.EqualValues(t, 1, fields["item_count"])

	t.Run("格式错误的消息确认丢弃", func(t *testing.T) {
		assert.NoError(t, handle(context.Background(), "order.placed", []byte("{")))
		assert.Equal(t, 1, logs.FilterMessage("订单事件格式错误,已丢弃").Len())
	})

	t.Run("路由键不一致只告警", func(t *testing.T) {
		assert.NoError(t, handle(context.Background(), "order.cancelled", body))
		assert.Equal(t, 1, logs.FilterMessage("路由键与事件类型不一致").Len())
	})
}
