package gormstore

import (
	"time"

	"github.com/shopspring/decimal"
)

// 以下是infrastructure层的数据模型(带GORM tag)
// domain层实体不依赖GORM,由Repository负责两者之间的转换
// 表结构以migrations下的goose脚本为准,AutoMigrate只用于本地开发

// UserModel GORM用户模型
type UserModel struct {
	ID        string       `gorm:"primaryKey;size:36"`
	Email     string       `gorm:"uniqueIndex:uk_users_email;size:100;not null;comment:邮箱"`
	Password  string       `gorm:"size:255;not null;comment:密码(bcrypt)"`
	Name      string       `gorm:"size:50;not null"`
	Role      string       `gorm:"size:16;not null;default:USER"`
	Orders    []OrderModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 价格使用DECIMAL(10,2);库存由CHECK(stock >= 0)兜底
type BookModel struct {
	ID          string           `gorm:"primaryKey;size:36"`
	ISBN        string           `gorm:"uniqueIndex:uk_books_isbn;size:20;not null;comment:ISBN号"`
	Title       string           `gorm:"index:idx_books_search;size:255;not null"`
	Author      string           `gorm:"index:idx_books_search;size:100;not null"`
	Description string           `gorm:"type:text"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Category    string           `gorm:"index;size:32;not null"`
	Stock       int              `gorm:"not null;default:0;check:chk_books_stock,stock >= 0"`
	PublisherID string           `gorm:"index;size:36"`
	OrderItems  []OrderItemModel `gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time        `gorm:"index"`
	UpdatedAt   time.Time
}

func (BookModel) TableName() string {
	return "books"
}

// OrderModel GORM订单模型,与OrderItemModel一对多
type OrderModel struct {
	ID        string           `gorm:"primaryKey;size:36"`
	UserID    string           `gorm:"index:idx_orders_user;size:36;not null"`
	Status    string           `gorm:"index;size:16;not null;default:PENDING"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"index:idx_orders_user"`
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// (order_id, book_id)唯一:同一订单中一本书只有一行
// UnitPrice是下单时的价格快照,总价读取时计算
type OrderItemModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	OrderID   string          `gorm:"uniqueIndex:uk_order_book;size:36;not null"`
	BookID    string          `gorm:"uniqueIndex:uk_order_book;index;size:36;not null"`
	Quantity  int             `gorm:"not null;check:chk_items_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// InventoryLogModel 库存变动日志(只追加)
// 不对order_id加外键:订单取消删除后日志仍需保留
type InventoryLogModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	BookID      string `gorm:"index;size:36;not null"`
	OrderID     string `gorm:"index;size:36"`
	ChangeType  string `gorm:"size:16;not null"`
	Quantity    int    `gorm:"not null"`
	BeforeStock int    `gorm:"not null"`
	AfterStock  int    `gorm:"not null"`
	CreatedAt   time.Time
}

func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}

// allModels AutoMigrate顺序:被引用的表在前
func allModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&BookModel{},
		&OrderModel{},
		&OrderItemModel{},
		&InventoryLogModel{},
	}
}
