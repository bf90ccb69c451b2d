//go:build wireinject
// +build wireinject

// Wire依赖注入配置,修改后执行 `wire gen ./cmd/api` 重新生成wire_gen.go
package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/bookstore/orderflow/internal/application/book"
	apporder "github.com/bookstore/orderflow/internal/application/order"
	appuser "github.com/bookstore/orderflow/internal/application/user"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/internal/interface/http/handler"
	"github.com/bookstore/orderflow/internal/interface/http/middleware"
	"github.com/bookstore/orderflow/internal/interface/http/router"
)

// infrastructureSet 存储、Redis、消息队列
var infrastructureSet = wire.NewSet(
	provideStore,
	provideTxManager,
	provideUserRepository,
	provideOrderRepository,
	provideRedisClient,
	provideSessionStore,
	provideOrderCache,
	provideEventPublisher,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideUserService,
	provideBookService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	apporder.NewPlaceOrderUseCase,
	apporder.NewUpdateOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewUpdateOrderStatusUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
)

// interfaceSet 中间件、处理器与路由
var interfaceSet = wire.NewSet(
	provideJWTManager,
	provideTokenBlacklist,
	middleware.NewAuthMiddleware,
	provideHealthHandler,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewOrderHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 组装应用;cleanup按创建的逆序释放连接
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
