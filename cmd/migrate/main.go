// migrate 手动执行数据库迁移
//
//	go run ./cmd/migrate [up|down|status|version]
//
// 数据库连接读取与API服务相同的配置(config.yaml + BOOKSTORE_环境变量)
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/internal/infrastructure/logger"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/gormstore"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("用法: migrate [up|down|status|version]")
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Database.Driver == "memory" {
		log.Fatal("内存存储不需要迁移")
	}
	// 由本命令显式执行,连接时不自动迁移
	cfg.Database.Migrate = "none"

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(command, cfg, zl); err != nil {
		zl.Fatal("迁移失败", zap.String("command", command), zap.Error(err))
	}
}

func run(command string, cfg *config.Config, zl *zap.Logger) error {
	db, err := gormstore.NewDB(cfg, zl)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	provider, err := migrations.NewProvider(cfg.Database.Driver, sqlDB)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		logResults(zl, results)
		return err
	case "down":
		result, err := provider.Down(ctx)
		if result != nil {
			logResults(zl, []*goose.MigrationResult{result})
		}
		return err
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			zl.Info("迁移状态",
				zap.Int64("version", s.Source.Version),
				zap.String("file", s.Source.Path),
				zap.String("state", string(s.State)),
				zap.Time("applied_at", s.AppliedAt),
			)
		}
		return nil
	case "version":
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return err
		}
		zl.Info("当前数据库版本", zap.Int64("version", version))
		return nil
	default:
		return fmt.Errorf("未知命令: %s", command)
	}
}

func logResults(zl *zap.Logger, results []*goose.MigrationResult) {
	if len(results) == 0 {
		zl.Info("没有需要执行的迁移")
		return
	}
	for _, r := range results {
		fields := []zap.Field{
			zap.Int64("version", r.Source.Version),
			zap.String("direction", r.Direction),
			zap.Duration("duration", r.Duration),
		}
		if r.Error != nil {
			zl.Error("迁移执行失败", append(fields, zap.Error(r.Error))...)
			continue
		}
		zl.Info("迁移执行完成", fields...)
	}
}
