package book

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/user"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

// PublishBookUseCase 图书上架用例(仅管理员)
// 业务规则校验由领域服务负责(ISBN格式、价格范围、分类等),应用层只做权限与编排
type PublishBookUseCase struct {
	bookService book.Service
	logger      *zap.Logger
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service, logger *zap.Logger) *PublishBookUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishBookUseCase{
		bookService: bookService,
		logger:      logger,
	}
}

// PublishBookRequest 上架请求DTO
type PublishBookRequest struct {
	ISBN        string
	Title       string
	Author      string
	Description string
	Price       decimal.Decimal
	Category    string
	Stock       int
}

// BookResult 图书响应DTO
type BookResult struct {
	ID          string `json:"id"`
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
	PublisherID string `json:"publisher_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行上架
func (uc *PublishBookUseCase) Execute(ctx context.Context, principal user.Principal, req PublishBookRequest) (*BookResult, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	b, err := uc.bookService.PublishBook(
		ctx,
		req.ISBN,
		req.Title,
		req.Author,
		req.Description,
		req.Price,
		book.Category(req.Category),
		req.Stock,
		principal.UserID,
	)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("图书上架成功",
		zap.String("book_id", b.ID),
		zap.String("isbn", b.ISBN),
		zap.Int("stock", b.Stock),
	)
	return toResult(b, true), nil
}

func toResult(b *book.Book, withDescription bool) *BookResult {
	r := &BookResult{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Price:       b.Price.StringFixed(2),
		Category:    string(b.Category),
		Stock:       b.Stock,
		PublisherID: b.PublisherID,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if withDescription {
		r.Description = b.Description
	}
	return r
}
