package public

import (
	"strings"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Checkout 把会话草稿定格为订单
func (h *Handler) Checkout(c *gin.Context) {
	sessionID := shared.EnsureDraftSession(c)
	order, err := h.CheckoutService.Checkout(c.Request.Context(), sessionID)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, order)
}

// GetOrder 按订单编号查询订单
func (h *Handler) GetOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	order, err := h.CheckoutService.GetOrderByOrderNo(orderNo)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "failed to load order")
		return
	}
	response.Success(c, order)
}
