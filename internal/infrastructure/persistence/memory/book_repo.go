package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/bookstore/orderflow/internal/domain/book"
	"github.com/bookstore/orderflow/internal/domain/inventory"
)

type bookRepo struct {
	run func(func(*state) error) error
}

func (r *bookRepo) Create(ctx context.Context, b *book.Book) error {
	return r.run(func(st *state) error {
		for _, existing := range st.books {
			if existing.ISBN == b.ISBN {
				return book.ErrISBNDuplicate
			}
		}
		if _, ok := st.books[b.ID]; ok {
			return book.ErrISBNDuplicate
		}
		st.books[b.ID] = b.Clone()
		return nil
	})
}

func (r *bookRepo) FindByID(ctx context.Context, id string) (*book.Book, error) {
	var found *book.Book
	err := r.run(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return book.NotFound(id)
		}
		found = b.Clone()
		return nil
	})
	return found, err
}

func (r *bookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var found *book.Book
	err := r.run(func(st *state) error {
		for _, b := range st.books {
			if b.ISBN == isbn {
				found = b.Clone()
				return nil
			}
		}
		return book.ErrBookNotFound
	})
	return found, err
}

func (r *bookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var (
		books []*book.Book
		total int64
	)
	err := r.run(func(st *state) error {
		keyword := strings.ToLower(params.Keyword)
		matched := make([]*book.Book, 0, len(st.books))
		for _, b := range st.books {
			if params.Category != "" && b.Category != params.Category {
				continue
			}
			if keyword != "" &&
				!strings.Contains(strings.ToLower(b.Title), keyword) &&
				!strings.Contains(strings.ToLower(b.Author), keyword) {
				continue
			}
			matched = append(matched, b)
		}

		sort.Slice(matched, func(i, j int) bool {
			switch params.SortBy {
			case "price_asc":
				return matched[i].Price.LessThan(matched[j].Price)
			case "price_desc":
				return matched[i].Price.GreaterThan(matched[j].Price)
			default:
				if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
					return matched[i].ID < matched[j].ID
				}
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
		})

		total = int64(len(matched))
		start, end := paginate(params.Page, params.PageSize, len(matched))
		for _, b := range matched[start:end] {
			books = append(books, b.Clone())
		}
		return nil
	})
	return books, total, err
}

// LockByIDs 内存存储由全局锁串行化,这里只返回副本
func (r *bookRepo) LockByIDs(ctx context.Context, ids []string) (map[string]*book.Book, error) {
	found := make(map[string]*book.Book, len(ids))
	err := r.run(func(st *state) error {
		for _, id := range ids {
			if b, ok := st.books[id]; ok {
				found[id] = b.Clone()
			}
		}
		return nil
	})
	return found, err
}

func (r *bookRepo) UpdateStock(ctx context.Context, id string, delta int) error {
	return r.run(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return book.NotFound(id)
		}
		if b.Stock+delta < 0 {
			return inventory.InsufficientStock(id, -delta, b.Stock)
		}
		b.Stock += delta
		return nil
	})
}
