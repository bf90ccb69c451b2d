//go:build integration

package gormstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	orderapp "github.com/bookstore/orderflow/internal/application/order"
	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
	"github.com/bookstore/orderflow/internal/domain/user"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// 运行: go test -tags=integration ./internal/infrastructure/persistence/gormstore/...
func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "bookstore",
			"POSTGRES_PASSWORD": "bookstore",
			"POSTGRES_DB":       "bookstore",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "启动postgres容器失败")
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("关闭容器失败: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver:       "postgres",
			Host:         host,
			Port:         port.Int(),
			User:         "bookstore",
			Password:     "bookstore",
			DBName:       "bookstore",
			SSLMode:      "disable",
			Isolation:    "read_committed",
			Migrate:      "goose",
			MaxOpenConns: 20,
			MaxIdleConns: 5,
		},
		Tx: config.TxConfig{MaxRetries: 5, InitialBackoff: 10 * time.Millisecond, MaxBackoff: 200 * time.Millisecond},
	}

	store, err := Open(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, s *Store, email string) user.Principal {
	t.Helper()
	u := user.NewUser(email, "hash", "buyer", user.RoleUser)
	require.NoError(t, s.Users().Create(context.Background(), u))
	return user.Principal{UserID: u.ID, Role: u.Role}
}

func TestStore_ConcurrentCheckoutNoOversell(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	b := book.NewBook("9787111558422", "Go程序设计语言", "Donovan", "", decimal.RequireFromString("79.00"), book.CategoryAcademic, 5, "admin")
	require.NoError(t, s.Books().Create(ctx, b))

	buyers := []user.Principal{seedUser(t, s, "a@example.com"), seedUser(t, s, "b@example.com")}
	place := orderapp.NewPlaceOrderUseCase(s, orderapp.NopPublisher{}, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		shortage int
	)
	for _, p := range buyers {
		wg.Add(1)
		go func(p user.Principal) {
			defer wg.Done()
			_, err := place.Execute(ctx, p, []orderapp.ItemInput{{BookID: b.ID, Quantity: 3}})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, inventory.ErrInsufficientStock):
				shortage++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, shortage)

	got, err := s.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestStore_UpdateAndCancelRestoreStock(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	b := book.NewBook("9787115428028", "Go语言实战", "Kennedy", "", decimal.RequireFromString("12.60"), book.CategoryAcademic, 10, "admin")
	require.NoError(t, s.Books().Create(ctx, b))
	buyer := seedUser(t, s, "c@example.com")

	place := orderapp.NewPlaceOrderUseCase(s, orderapp.NopPublisher{}, nil)
	upd := orderapp.NewUpdateOrderUseCase(s, orderapp.NopCache{}, orderapp.NopPublisher{}, nil)
	cncl := orderapp.NewCancelOrderUseCase(s, orderapp.NopCache{}, orderapp.NopPublisher{}, nil)

	created, err := place.Execute(ctx, buyer, []orderapp.ItemInput{{BookID: b.ID, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, "37.80", created.TotalPrice)

	updated, err := upd.Execute(ctx, buyer, created.ID, []orderapp.ItemInput{{BookID: b.ID, Quantity: 5}})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 5, updated.Items[0].Quantity)

	got, err := s.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	require.NoError(t, cncl.Execute(ctx, buyer, created.ID))
	got, err = s.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	logs, err := s.InventoryLogs().ListByOrderID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3, "下单、改单、取消各一条")
}

func TestStore_ConstraintViolationNotRetried(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	b := book.NewBook("9787121155352", "深入理解计算机系统", "Bryant", "", decimal.NewFromInt(139), book.CategoryAcademic, 1, "admin")
	require.NoError(t, s.Books().Create(ctx, b))

	dup := book.NewBook("9787121155352", "重复ISBN", "x", "", decimal.NewFromInt(1), book.CategoryAcademic, 1, "admin")
	err := s.Books().Create(ctx, dup)
	assert.True(t, errors.Is(err, book.ErrISBNDuplicate))

	err = s.Books().UpdateStock(ctx, b.ID, -2)
	assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))
	assert.False(t, errors.Is(err, apperrors.ErrConcurrentConflict))
}
