package gormstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/migrations"
)

// NewDB 创建数据库连接
// 1. 按database.driver选择MySQL或PostgreSQL方言
// 2. TranslateError开启后唯一键/外键冲突会转成gorm错误,仓储仍会再检查驱动错误码
// 3. SQL日志走zap,慢查询阈值可配置
// 4. 按database.migrate执行goose版本化迁移或AutoMigrate
func NewDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.Database.SlowThreshold,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	logger.Info("数据库连接成功",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	if err := Migrate(context.Background(), db, cfg.Database, logger); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(cfg.DSN()), nil
	case "postgres":
		return postgres.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("gormstore不支持的数据库驱动: %s", cfg.Driver)
	}
}

// Migrate 表结构迁移
// goose: 执行migrations下的版本化脚本(生产环境)
// auto:  GORM AutoMigrate,只建表加字段,不删改
// none:  跳过,由cmd/migrate单独执行
func Migrate(ctx context.Context, db *gorm.DB, cfg config.DatabaseConfig, logger *zap.Logger) error {
	switch cfg.Migrate {
	case "goose":
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		results, err := migrations.Up(ctx, cfg.Driver, sqlDB)
		if err != nil {
			return err
		}
		for _, r := range results {
			logger.Info("执行迁移", zap.String("source", r.Source.Path), zap.Duration("duration", r.Duration))
		}
		return nil
	case "auto":
		return db.WithContext(ctx).AutoMigrate(allModels()...)
	default:
		return nil
	}
}
