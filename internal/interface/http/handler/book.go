package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/bookstore/orderflow/internal/application/book"
	"github.com/bookstore/orderflow/internal/interface/http/dto"
	"github.com/bookstore/orderflow/internal/interface/http/middleware"
	"github.com/bookstore/orderflow/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishBook *appbook.PublishBookUseCase
	listBooks   *appbook.ListBooksUseCase
	getBook     *appbook.GetBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(publishBook *appbook.PublishBookUseCase, listBooks *appbook.ListBooksUseCase, getBook *appbook.GetBookUseCase) *BookHandler {
	return &BookHandler{publishBook: publishBook, listBooks: listBooks, getBook: getBook}
}

// PublishBook 上架图书
// @Summary      上架图书(管理员)
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookResult}
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.publishBook.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), appbook.PublishBookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  公开接口,支持关键词、分类过滤与排序
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量" default(20)
// @Param        keyword   query string false "标题/作者关键词"
// @Param        category  query string false "分类"
// @Param        sort_by   query string false "排序" Enums(price_asc, price_desc, created_at_desc)
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Category: req.Category,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookResult}
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	result, err := h.getBook.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
