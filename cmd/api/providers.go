package main

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apporder "github.com/bookstore/orderflow/internal/application/order"
	appuser "github.com/bookstore/orderflow/internal/application/user"
	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/domain/uow"
	"github.com/bookstore/orderflow/internal/domain/user"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/internal/infrastructure/messaging"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/memory"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/redis"
	"github.com/bookstore/orderflow/internal/interface/http/handler"
	"github.com/bookstore/orderflow/internal/interface/http/middleware"
	"github.com/bookstore/orderflow/pkg/jwt"
	"github.com/bookstore/orderflow/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Engine   *gin.Engine
	Register *appuser.RegisterUseCase
}

// provideStore 按database.driver打开存储,cleanup关闭连接池
func provideStore(cfg *config.Config, logger *zap.Logger) (persistence.Store, func(), error) {
	store, err := persistence.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("关闭数据库连接失败", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func provideTxManager(store persistence.Store) uow.Manager { return store }

func provideUserRepository(store persistence.Store) user.Repository { return store.Users() }

func provideOrderRepository(store persistence.Store) order.Repository { return store.Orders() }

func provideUserService(store persistence.Store, cfg *config.Config) user.Service {
	return user.NewService(store.Users(), cfg.JWT.BcryptCost)
}

func provideBookService(store persistence.Store) book.Service {
	return book.NewService(store.Books())
}

// provideRedisClient redis.enabled=false时返回nil,下游退化为内存会话与无缓存
func provideRedisClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Warn("Redis未启用:会话使用内存存储,订单不缓存")
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("关闭Redis连接失败", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

func provideSessionStore(client *goredis.Client) appuser.SessionStore {
	if client == nil {
		return memory.NewSessionStore()
	}
	return redis.NewSessionStore(client)
}

func provideTokenBlacklist(sessions appuser.SessionStore) middleware.TokenBlacklist {
	return sessions
}

func provideOrderCache(client *goredis.Client, cfg *config.Config, logger *zap.Logger) apporder.Cache {
	if client == nil {
		return apporder.NopCache{}
	}
	return redis.NewOrderCache(client, cfg.Cache, logger)
}

// provideEventPublisher mq.enabled=false时不发布订单事件
func provideEventPublisher(cfg *config.Config, logger *zap.Logger) (apporder.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return apporder.NopPublisher{}, func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic", logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("关闭消息队列连接失败", zap.Error(err))
		}
	}
	return messaging.NewOrderEventPublisher(publisher, logger), cleanup, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideHealthHandler(store persistence.Store, cfg *config.Config, logger *zap.Logger) *handler.HealthHandler {
	return handler.NewHealthHandler(store, cfg.Server.Version, logger)
}
