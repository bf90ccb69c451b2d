package book

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category 图书分类
type Category string

const (
	// 小说类
	CategoryFiction           Category = "FICTION"
	CategoryMystery           Category = "MYSTERY"
	CategoryFantasy           Category = "FANTASY"
	CategoryScienceFiction    Category = "SCIENCE_FICTION"
	CategoryRomance           Category = "ROMANCE"
	CategoryThriller          Category = "THRILLER"
	CategoryHorror            Category = "HORROR"
	CategoryAdventure         Category = "ADVENTURE"
	CategoryHistoricalFiction Category = "HISTORICAL_FICTION"

	// 非虚构类
	CategoryNonFiction    Category = "NON_FICTION"
	CategoryBiography     Category = "BIOGRAPHY"
	CategoryAutobiography Category = "AUTOBIOGRAPHY"
	CategoryHistory       Category = "HISTORY"
	CategorySelfHelp      Category = "SELF_HELP"
	CategoryBusiness      Category = "BUSINESS"
	CategoryCookbooks     Category = "COOKBOOKS"
	CategoryTravel        Category = "TRAVEL"
	CategoryScience       Category = "SCIENCE"

	// 其他
	CategoryPoetry       Category = "POETRY"
	CategoryChildren     Category = "CHILDREN"
	CategoryGraphicNovel Category = "GRAPHIC_NOVEL"
	CategoryAcademic     Category = "ACADEMIC"
	CategoryPhilosophy   Category = "PHILOSOPHY"
)

var categories = map[Category]struct{}{
	CategoryFiction: {}, CategoryMystery: {}, CategoryFantasy: {}, CategoryScienceFiction: {},
	CategoryRomance: {}, CategoryThriller: {}, CategoryHorror: {}, CategoryAdventure: {},
	CategoryHistoricalFiction: {}, CategoryNonFiction: {}, CategoryBiography: {},
	CategoryAutobiography: {}, CategoryHistory: {}, CategorySelfHelp: {}, CategoryBusiness: {},
	CategoryCookbooks: {}, CategoryTravel: {}, CategoryScience: {}, CategoryPoetry: {},
	CategoryChildren: {}, CategoryGraphicNovel: {}, CategoryAcademic: {}, CategoryPhilosophy: {},
}

// Valid 是否为已知分类
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. 价格使用decimal存储,避免浮点数精度问题
// 2. ISBN作为业务唯一标识(数据库层保证唯一性)
// 3. Stock只能通过inventory.Ledger修改,其他代码不应直接赋值
type Book struct {
	ID          string
	ISBN        string          // ISBN号(国际标准书号)
	Title       string          // 书名
	Author      string          // 作者
	Description string          // 图书描述
	Price       decimal.Decimal // 单价
	Category    Category        // 分类
	Stock       int             // 库存数量
	PublisherID string          // 发布者用户ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
// 调用方需先完成字段校验(见Service.PublishBook)
func NewBook(isbn, title, author, description string, price decimal.Decimal, category Category, stock int, publisherID string) *Book {
	now := time.Now()
	return &Book{
		ID:          uuid.NewString(),
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Description: description,
		Price:       price,
		Category:    category,
		Stock:       stock,
		PublisherID: publisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdatePrice 更新价格(领域行为)
// 已下单的明细保存的是下单时的单价快照,不受影响
func (b *Book) UpdatePrice(newPrice decimal.Decimal) error {
	if newPrice.IsNegative() {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存
// 仅供inventory.Ledger调用
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return ErrInsufficientStock
	}
	b.Stock -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// IncrStock 增加库存
// 仅供inventory.Ledger调用
func (b *Book) IncrStock(quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		return nil
	}
	if b.Stock > maxInt-quantity {
		return ErrStockOverflow
	}
	b.Stock += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新图书基本信息
func (b *Book) UpdateInfo(title, author, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID string) bool {
	return b.PublisherID == userID
}

// Clone 复制一份图书(内存存储的事务快照使用)
func (b *Book) Clone() *Book {
	c := *b
	return &c
}

const maxInt = int(^uint(0) >> 1)
