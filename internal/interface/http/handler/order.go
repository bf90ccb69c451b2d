package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/bookstore/orderflow/internal/application/order"
	"github.com/bookstore/orderflow/internal/domain/order"
	"github.com/bookstore/orderflow/internal/interface/http/dto"
	"github.com/bookstore/orderflow/internal/interface/http/middleware"
	"github.com/bookstore/orderflow/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	placeOrder   *apporder.PlaceOrderUseCase
	updateOrder  *apporder.UpdateOrderUseCase
	cancelOrder  *apporder.CancelOrderUseCase
	updateStatus *apporder.UpdateOrderStatusUseCase
	getOrder     *apporder.GetOrderUseCase
	listOrders   *apporder.ListOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	placeOrder *apporder.PlaceOrderUseCase,
	updateOrder *apporder.UpdateOrderUseCase,
	cancelOrder *apporder.CancelOrderUseCase,
	updateStatus *apporder.UpdateOrderStatusUseCase,
	getOrder *apporder.GetOrderUseCase,
	listOrders *apporder.ListOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		placeOrder:   placeOrder,
		updateOrder:  updateOrder,
		cancelOrder:  cancelOrder,
		updateStatus: updateStatus,
		getOrder:     getOrder,
		listOrders:   listOrders,
	}
}

// PlaceOrder 下单
// @Summary      下单
// @Description  锁定库存并创建订单,任一图书库存不足则整单失败
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceOrderRequest true "订单明细"
// @Success      200 {object} response.Response{data=apporder.OrderResult}
// @Router       /api/v1/orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.placeOrder.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), toItemInputs(req.Items))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateOrder 改单(整单替换)
// @Summary      修改订单
// @Description  按请求重建明细:新增的扣减库存,减少或移除的归还库存;只有待发货订单可修改
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Param        request body dto.UpdateOrderRequest true "完整的订单明细"
// @Success      200 {object} response.Response{data=apporder.OrderResult}
// @Router       /api/v1/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.updateOrder.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), c.Param("id"), toItemInputs(req.Items))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Description  归还全部库存并删除订单;只有待发货订单可取消
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/orders/{id} [delete]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	if err := h.cancelOrder.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderResult}
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	result, err := h.getOrder.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrders 我的订单
// @Summary      我的订单列表
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码" default(1)
// @Param        page_size query int false "每页数量(最大100)" default(10)
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.listOrders.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// UpdateOrderStatus 变更订单状态
// @Summary      变更订单状态(管理员)
// @Description  PENDING → SHIPPED → DELIVERED
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Param        request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.OrderResult}
// @Router       /api/v1/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.updateStatus.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), c.Param("id"), order.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func toItemInputs(items []dto.OrderItemRequest) []apporder.ItemInput {
	inputs := make([]apporder.ItemInput, len(items))
	for i, item := range items {
		inputs[i] = apporder.ItemInput{BookID: item.BookID, Quantity: item.Quantity}
	}
	return inputs
}
