package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
)

// bookRepository 图书仓储实现
// db可以是普通连接,也可以是事务(由TxManager创建)
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书,ISBN唯一性由唯一索引保证
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicate(err) {
			return book.ErrISBNDuplicate
		}
		return translate(err, "创建图书")
	}

	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	var model BookModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.NotFound(id)
		}
		return nil, translate(err, "查询图书")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, translate(err, "查询图书")
	}
	return toBookEntity(&model), nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var (
		models []BookModel
		total  int64
	)

	query := r.db.WithContext(ctx).Model(&BookModel{})
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", keyword, keyword)
	}
	if params.Category != "" {
		query = query.Where("category = ?", string(params.Category))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "查询图书总数")
	}

	switch params.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}
	query = query.Order("id")

	offset := (params.Page - 1) * params.PageSize
	if err := query.Limit(params.PageSize).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, translate(err, "查询图书列表")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// LockByIDs SELECT ... WHERE id IN (...) ORDER BY id FOR UPDATE
// 按主键升序加锁,所有事务以相同顺序获取行锁,避免交叉等待
func (r *bookRepository) LockByIDs(ctx context.Context, ids []string) (map[string]*book.Book, error) {
	books := make(map[string]*book.Book, len(ids))
	if len(ids) == 0 {
		return books, nil
	}

	var models []BookModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, translate(err, "锁定图书")
	}

	for i := range models {
		books[models[i].ID] = toBookEntity(&models[i])
	}
	return books, nil
}

// UpdateStock UPDATE books SET stock = stock + ? WHERE id = ? AND stock + ? >= 0
// 未更新任何行时再查一次区分图书不存在与库存不足
func (r *bookRepository) UpdateStock(ctx context.Context, id string, delta int) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translate(result.Error, "更新库存")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var model BookModel
	if err := db.Select("id", "stock").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book.NotFound(id)
		}
		return translate(err, "查询库存")
	}
	return inventory.InsufficientStock(id, -delta, model.Stock)
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       b.Price,
		Category:    string(b.Category),
		Stock:       b.Stock,
		PublisherID: b.PublisherID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:          model.ID,
		ISBN:        model.ISBN,
		Title:       model.Title,
		Author:      model.Author,
		Description: model.Description,
		Price:       model.Price,
		Category:    book.Category(model.Category),
		Stock:       model.Stock,
		PublisherID: model.PublisherID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
