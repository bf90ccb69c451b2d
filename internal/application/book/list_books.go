package book

import (
	"context"

	"github.com/bookstore/orderflow/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例
// 列表不返回description字段(减少数据传输量)
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(标题、作者)
	Category string // 分类过滤
	SortBy   string // 排序方式(price_asc, price_desc, created_at_desc)
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List       []*BookResult `json:"list"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// Execute 执行列表查询(page默认1, pageSize默认20, 最大100)
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Category: book.Category(req.Category),
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*BookResult, len(books))
	for i, b := range books {
		list[i] = toResult(b, false)
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListBooksResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetBookUseCase 图书详情查询用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 查询图书详情
func (uc *GetBookUseCase) Execute(ctx context.Context, id string) (*BookResult, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResult(b, true), nil
}
