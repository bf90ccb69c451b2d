package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/infrastructure/config"
)

func TestOpen(t *testing.T) {
	t.Run("内存存储", func(t *testing.T) {
		cfg := &config.Config{Database: config.DatabaseConfig{Driver: "memory"}}
		s, err := Open(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.NoError(t, s.Ping(context.Background()))
		assert.NoError(t, s.Close())
	})

	t.Run("未知驱动", func(t *testing.T) {
		cfg := &config.Config{Database: config.DatabaseConfig{Driver: "oracle"}}
		_, err := Open(cfg, zap.NewNop())
		assert.Error(t, err)
	})
}
