package admin

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateDiscount 创建折扣
func (h *Handler) CreateDiscount(c *gin.Context) {
	var input service.DiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	discount, err := h.DiscountAdminService.Create(input)
	if err != nil {
		respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, "failed to create discount")
		return
	}
	response.Success(c, discount)
}

// UpdateDiscount 更新折扣
func (h *Handler) UpdateDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.DiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	discount, err := h.DiscountAdminService.Update(id, input)
	if err != nil {
		respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, "failed to update discount")
		return
	}
	response.Success(c, discount)
}

// GetDiscount 获取折扣详情
func (h *Handler) GetDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	discount, err := h.DiscountAdminService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, "failed to load discount")
		return
	}
	response.Success(c, discount)
}

// ListDiscounts 获取折扣列表
func (h *Handler) ListDiscounts(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.DiscountListFilter{
		Page:      page,
		PageSize:  pageSize,
		Code:      strings.TrimSpace(c.Query("code")),
		AppliesTo: strings.TrimSpace(c.Query("applies_to")),
	}
	if raw := c.Query("automatic"); raw != "" {
		automatic, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid automatic")
			return
		}
		filter.Automatic = &automatic
	}
	if raw := c.Query("is_active"); raw != "" {
		isActive, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid is_active")
			return
		}
		filter.IsActive = &isActive
	}
	discounts, total, err := h.DiscountAdminService.List(filter)
	if err != nil {
		respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, "failed to list discounts")
		return
	}
	response.SuccessWithPage(c, discounts, response.NewPagination(page, pageSize, total))
}

// DeleteDiscount 删除折扣
func (h *Handler) DeleteDiscount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.DiscountAdminService.Delete(id); err != nil {
		respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, "failed to delete discount")
		return
	}
	response.SuccessWithMsg(c, "deleted", nil)
}
