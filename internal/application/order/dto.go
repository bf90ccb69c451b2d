package order

import (
	"time"

	"github.com/bookstore/orderflow/internal/domain/order"
)

// ItemInput 下单/改单请求中的一项
type ItemInput struct {
	BookID   string
	Quantity int
}

// OrderResult 订单响应DTO(也是缓存与事件的载荷)
type OrderResult struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	Status     string       `json:"status"`
	Items      []ItemResult `json:"items"`
	TotalPrice string       `json:"total_price"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ItemResult 订单明细DTO
type ItemResult struct {
	ID         uint   `json:"id"`
	BookID     string `json:"book_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"` // 读取时计算,不落库
}

// ListOrdersResult 订单分页结果
type ListOrdersResult struct {
	List     []*OrderResult `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func toResult(o *order.Order) *OrderResult {
	items := o.Items()
	result := &OrderResult{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     o.Status.String(),
		Items:      make([]ItemResult, 0, len(items)),
		TotalPrice: o.TotalPrice().StringFixed(2),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, item := range items {
		result.Items = append(result.Items, ItemResult{
			ID:         item.ID,
			BookID:     item.BookID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.StringFixed(2),
			TotalPrice: item.TotalPrice().StringFixed(2),
		})
	}
	return result
}
