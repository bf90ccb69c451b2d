package dto

// OrderItemRequest 订单明细项
// 数量范围与重复图书由领域层校验,保证错误码一致
type OrderItemRequest struct {
	BookID   string `json:"book_id" binding:"required" example:"5f0c8a52-8d3e-4c1e-9a53-0d5b7f1e2a11"`
	Quantity int    `json:"quantity" example:"2"`
}

// PlaceOrderRequest HTTP下单请求
type PlaceOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,dive"`
}

// UpdateOrderRequest HTTP改单请求(整单替换)
// items必须出现,可以为空数组(移除全部明细,订单保留)
type UpdateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,dive"`
}

// UpdateOrderStatusRequest 订单状态变更请求(管理员)
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"SHIPPED"`
}

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1" example:"10"`
}
