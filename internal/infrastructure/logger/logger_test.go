package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/infrastructure/config"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := New(config.LogConfig{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	l.Info("不应输出")
	l.Warn("库存不足", zap.String("book_id", "b1"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "不应输出")
	assert.Contains(t, string(data), `"book_id":"b1"`)
	assert.Same(t, l, zap.L(), "应替换全局日志")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "verbose", Format: "console"})
	assert.Error(t, err)
}
