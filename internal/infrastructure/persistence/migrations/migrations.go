// Package migrations 版本化表结构(goose),SQL脚本随二进制嵌入
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed mysql/*.sql postgres/*.sql
var scripts embed.FS

// NewProvider 按驱动选择对应目录的脚本
func NewProvider(driver string, db *sql.DB) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch driver {
	case "mysql":
		dialect = goose.DialectMySQL
	case "postgres":
		dialect = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("不支持迁移的数据库驱动: %s", driver)
	}

	dir, err := fs.Sub(scripts, driver)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, dir)
}

// Up 执行全部未执行的迁移
func Up(ctx context.Context, driver string, db *sql.DB) ([]*goose.MigrationResult, error) {
	p, err := NewProvider(driver, db)
	if err != nil {
		return nil, err
	}
	return p.Up(ctx)
}
