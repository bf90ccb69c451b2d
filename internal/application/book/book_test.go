package book

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/user"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/memory"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

var (
	admin    = user.Principal{UserID: "root", Role: user.RoleAdmin}
	customer = user.Principal{UserID: "alice", Role: user.RoleUser}
)

func newUseCases() (*PublishBookUseCase, *ListBooksUseCase, *GetBookUseCase) {
	svc := book.NewService(memory.NewStore().Books())
	return NewPublishBookUseCase(svc, nil), NewListBooksUseCase(svc), NewGetBookUseCase(svc)
}

func TestPublishBook(t *testing.T) {
	ctx := context.Background()
	publish, _, get := newUseCases()

	req := PublishBookRequest{
		ISBN:     "978-7-115-42802-8",
		Title:    "Go语言圣经",
		Author:   "Alan A. A. Donovan",
		Price:    decimal.RequireFromString("89.005"),
		Category: "ACADEMIC",
		Stock:    10,
	}

	t.Run("普通用户无权上架", func(t *testing.T) {
		_, err := publish.Execute(ctx, customer, req)
		assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	})

	t.Run("管理员上架成功", func(t *testing.T) {
		result, err := publish.Execute(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, "9787115428028", result.ISBN, "去掉分隔符存储")
		assert.Equal(t, "89.01", result.Price)
		assert.Equal(t, "root", result.PublisherID)

		got, err := get.Execute(ctx, result.ID)
		require.NoError(t, err)
		assert.Equal(t, result.Title, got.Title)
	})

	t.Run("ISBN重复", func(t *testing.T) {
		_, err := publish.Execute(ctx, admin, req)
		assert.True(t, errors.Is(err, book.ErrISBNDuplicate))
	})

	t.Run("非法分类", func(t *testing.T) {
		bad := req
		bad.ISBN = "7115428028"
		bad.Category = "COMICS"
		_, err := publish.Execute(ctx, admin, bad)
		assert.True(t, errors.Is(err, book.ErrInvalidCategory))
	})
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	publish, list, _ := newUseCases()

	isbns := []string{"9787111558422", "9787115428028", "7115428028"}
	for i, isbn := range isbns {
		category := "ACADEMIC"
		if i == 2 {
			category = "POETRY"
		}
		_, err := publish.Execute(ctx, admin, PublishBookRequest{
			ISBN: isbn, Title: "书" + isbn, Author: "作者", Description: "长描述",
			Price: decimal.NewFromInt(int64(10 + i)), Category: category, Stock: 1,
		})
		require.NoError(t, err)
	}

	resp, err := list.Execute(ctx, ListBooksRequest{PageSize: 2, SortBy: "price_desc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.List, 2)
	assert.Equal(t, "12.00", resp.List[0].Price)
	assert.Empty(t, resp.List[0].Description, "列表不返回描述")

	resp, err = list.Execute(ctx, ListBooksRequest{Category: "POETRY"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Total)
	assert.Equal(t, 20, resp.PageSize)

	_, err = list.Execute(ctx, ListBooksRequest{Category: "COMICS"})
	assert.True(t, errors.Is(err, book.ErrInvalidCategory))
}
