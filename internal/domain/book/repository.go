package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 事务内调用时由uow.Tx提供实例,事务外由容器直接注入
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id string) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByIDs 批量悲观锁查询图书
	// 按ID升序加锁(SELECT ... FOR UPDATE),避免不同事务交叉加锁导致死锁
	// 不存在的ID不会出现在返回的map中,由调用方判断
	LockByIDs(ctx context.Context, ids []string) (map[string]*Book, error)

	// UpdateStock 更新库存(原子操作)
	// delta为正数表示增加,负数表示减少
	// 条件更新 stock + delta >= 0,不满足时返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id string, delta int) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int      // 页码(从1开始)
	PageSize int      // 每页数量
	Keyword  string   // 搜索关键词(搜索标题、作者)
	Category Category // 分类过滤,为空表示不过滤
	SortBy   string   // 排序字段(price_asc, price_desc, created_at_desc)
}
