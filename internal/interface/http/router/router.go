// Package router 注册HTTP路由与全局中间件
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bookstore/orderflow/docs"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/internal/interface/http/handler"
	"github.com/bookstore/orderflow/internal/interface/http/middleware"
	"github.com/bookstore/orderflow/pkg/metrics"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Health *handler.HealthHandler
	User   *handler.UserHandler
	Book   *handler.BookHandler
	Order  *handler.OrderHandler
}

// New 创建Gin引擎
//
// 中间件顺序:Recovery → Tracing → Metrics → Logger
// Tracing在Logger之前,访问日志才能带上trace_id
func New(cfg *config.Config, logger *zap.Logger, auth *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing())
	}
	if metrics.Enabled() {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	r.Use(middleware.Logger(logger))

	r.GET("/health", h.Health.Health)

	// 生产环境不暴露接口文档
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", h.User.Register)
			users.POST("/login", h.User.Login)
			users.POST("/refresh", h.User.RefreshToken)
			users.POST("/logout", auth.RequireAuth(), h.User.Logout)
			users.GET("/me", auth.RequireAuth(), h.User.Me)
		}

		books := v1.Group("/books")
		{
			books.GET("", h.Book.ListBooks)
			books.GET("/:id", h.Book.GetBook)
			books.POST("", auth.RequireAuth(), auth.RequireAdmin(), h.Book.PublishBook)
		}

		// 订单接口都需要登录;状态变更的管理员校验在用例内完成
		orders := v1.Group("/orders")
		orders.Use(auth.RequireAuth())
		{
			orders.POST("", h.Order.PlaceOrder)
			orders.GET("", h.Order.ListOrders)
			orders.GET("/:id", h.Order.GetOrder)
			orders.PUT("/:id", h.Order.UpdateOrder)
			orders.DELETE("/:id", h.Order.CancelOrder)
			orders.PATCH("/:id/status", h.Order.UpdateOrderStatus)
		}
	}

	return r
}
