package admin

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateGiftCard 创建礼品卡
func (h *Handler) CreateGiftCard(c *gin.Context) {
	var input service.GiftCardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	card, err := h.GiftCardAdminService.Create(input)
	if err != nil {
		respondWithMappedError(c, err, giftCardErrorRules, response.CodeInternal, "failed to create gift card")
		return
	}
	response.Success(c, card)
}

// UpdateGiftCard 更新礼品卡状态与有效期
func (h *Handler) UpdateGiftCard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.GiftCardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	card, err := h.GiftCardAdminService.Update(id, input)
	if err != nil {
		respondWithMappedError(c, err, giftCardErrorRules, response.CodeInternal, "failed to update gift card")
		return
	}
	response.Success(c, card)
}

// adjustBalanceRequest 余额调整请求
type adjustBalanceRequest struct {
	Delta models.Money `json:"delta"`
}

// AdjustGiftCardBalance 人工调整礼品卡余额
func (h *Handler) AdjustGiftCardBalance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req adjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	card, err := h.GiftCardAdminService.AdjustBalance(id, req.Delta)
	if err != nil {
		respondWithMappedError(c, err, giftCardErrorRules, response.CodeInternal, "failed to adjust balance")
		return
	}
	response.Success(c, card)
}

// GetGiftCard 获取礼品卡详情
func (h *Handler) GetGiftCard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	card, err := h.GiftCardAdminService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, giftCardErrorRules, response.CodeInternal, "failed to load gift card")
		return
	}
	response.Success(c, card)
}

// ListGiftCards 获取礼品卡列表
func (h *Handler) ListGiftCards(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.GiftCardListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
	}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid customer_id")
			return
		}
		filter.CustomerID = uint(customerID)
	}
	if raw := c.Query("is_active"); raw != "" {
		isActive, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid is_active")
			return
		}
		filter.IsActive = &isActive
	}
	cards, total, err := h.GiftCardAdminService.List(filter)
	if err != nil {
		respondWithMappedError(c, err, giftCardErrorRules, response.CodeInternal, "failed to list gift cards")
		return
	}
	response.SuccessWithPage(c, cards, response.NewPagination(page, pageSize, total))
}

// DeleteGiftCard 删除礼品卡
func (h *Handler) DeleteGiftCard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.GiftCardAdminService.Delete(id); err != nil {
		respondWithMappedError(c, err, giftCardErrorRules, response.CodeInternal, "failed to delete gift card")
		return
	}
	response.SuccessWithMsg(c, "deleted", nil)
}
