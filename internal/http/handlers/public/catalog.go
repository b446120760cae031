package public

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListProducts 获取商品列表（含自动折扣预览价）
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       strings.TrimSpace(c.Query("search")),
		WithCategory: true,
	}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid category_id")
			return
		}
		filter.CategoryID = uint(categoryID)
	}
	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to list products")
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 按 slug 获取商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		response.BadRequest(c, "invalid slug")
		return
	}
	detail, err := h.ProductService.GetBySlug(slug)
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to load product")
		return
	}
	response.Success(c, detail)
}

// ListCategories 获取全部分类
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.ProductService.ListCategories()
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to list categories")
		return
	}
	response.Success(c, categories)
}
