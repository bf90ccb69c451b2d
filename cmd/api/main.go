package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/internal/infrastructure/logger"
	"github.com/bookstore/orderflow/pkg/metrics"
	"github.com/bookstore/orderflow/pkg/tracing"
)

// @title           Bookstore Order API
// @version         1.0
// @description     图书订单服务:下单、改单、取消与库存流水
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Bearer {access_token}
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("服务异常退出", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	// 指标必须在路由注册之前初始化,路由据此决定是否挂载/metrics
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				zl.Warn("关闭链路追踪失败", zap.Error(err))
			}
		}()
	}

	app, cleanup, err := InitializeApp(cfg, zl)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Admin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := app.Register.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
		cancel()
		if err != nil {
			return fmt.Errorf("初始化管理员账号失败: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("服务启动",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("database", cfg.Database.Driver),
			zap.String("version", cfg.Server.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case sig := <-quit:
		zl.Info("收到退出信号,开始优雅关闭", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭HTTP服务失败: %w", err)
	}
	zl.Info("服务已停止")
	return nil
}
