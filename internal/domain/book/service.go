package book

import (
	"context"
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// maxPrice 单价上限
var maxPrice = decimal.NewFromInt(9999999)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// PublishBook 发布图书(上架)
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 价格必须>=0
	// - 库存必须>=0
	// - 分类必须是已知分类
	// - ISBN不能重复
	PublishBook(ctx context.Context, isbn, title, author, description string, price decimal.Decimal, category Category, stock int, publisherID string) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id string) (*Book, error)

	// ListBooks 分页查询图书列表
	// 公开接口,不需要权限校验
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// PublishBook 发布图书
func (s *service) PublishBook(ctx context.Context, isbn, title, author, description string, price decimal.Decimal, category Category, stock int, publisherID string) (*Book, error) {
	// 1. ISBN格式校验(统一去掉分隔符后存储)
	isbn, ok := normalizeISBN(isbn)
	if !ok {
		return nil, ErrInvalidISBN
	}

	if n := utf8.RuneCountInString(title); n == 0 || n > 255 {
		return nil, ErrInvalidTitle
	}

	// 2. 价格范围校验
	if price.IsNegative() || price.GreaterThan(maxPrice) {
		return nil, ErrInvalidPrice
	}

	// 3. 库存校验
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	// 4. 检查ISBN是否已存在(并发情况下由唯一索引兜底)
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	// 5. 创建图书实体并持久化
	book := NewBook(isbn, title, author, description, price.Round(2), category, stock, publisherID)
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id string) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	if params.Category != "" && !params.Category.Valid() {
		return nil, 0, ErrInvalidCategory
	}
	return s.repo.List(ctx, params)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

var nonDigit = regexp.MustCompile(`[^0-9]`)

// normalizeISBN 校验ISBN格式并去掉分隔符
// 支持ISBN-10与ISBN-13,如978-7-115-42802-8 → 9787115428028
// 简化实现:只检查位数(生产环境应校验校验位)
func normalizeISBN(isbn string) (string, bool) {
	cleanISBN := nonDigit.ReplaceAllString(isbn, "")
	length := len(cleanISBN)
	return cleanISBN, length == 10 || length == 13
}
