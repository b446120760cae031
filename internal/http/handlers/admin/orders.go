package admin

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid customer_id")
			return
		}
		filter.CustomerID = uint(customerID)
	}
	orders, total, err := h.OrderRepo.List(filter)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "failed to list orders", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderRepo.GetByID(id)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "failed to load order", err)
		return
	}
	if order == nil {
		response.NotFound(c, "order not found")
		return
	}
	response.Success(c, order)
}
