package public

import (
	"strconv"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// draftView 草稿响应视图
type draftView struct {
	SessionID  string             `json:"session_id"`
	CustomerID uint               `json:"customer_id,omitempty"`
	Draft      pricing.OrderDraft `json:"draft"`
}

// selectionFailureView 批量加入失败项视图
type selectionFailureView struct {
	Index         int    `json:"index"`
	ProductID     uint   `json:"product_id"`
	CombinationID *uint  `json:"combination_id,omitempty"`
	Reason        string `json:"reason"`
}

func newSelectionFailureViews(failures []pricing.SelectionFailure) []selectionFailureView {
	views := make([]selectionFailureView, 0, len(failures))
	for _, f := range failures {
		reason := ""
		if f.Err != nil {
			reason = f.Err.Error()
		}
		views = append(views, selectionFailureView{
			Index:         f.Index,
			ProductID:     f.ProductID,
			CombinationID: f.CombinationID,
			Reason:        reason,
		})
	}
	return views
}

// GetDraft 获取会话草稿
func (h *Handler) GetDraft(c *gin.Context) {
	sessionID := shared.EnsureDraftSession(c)
	state, err := h.DraftService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to load draft")
		return
	}
	response.Success(c, draftView{
		SessionID:  state.SessionID,
		CustomerID: state.CustomerID,
		Draft:      state.Draft,
	})
}

// bindCustomerRequest 绑定客户请求
type bindCustomerRequest struct {
	CustomerID uint `json:"customer_id" binding:"required"`
}

// BindCustomer 把会话草稿绑定到客户
func (h *Handler) BindCustomer(c *gin.Context) {
	var req bindCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	sessionID := shared.EnsureDraftSession(c)
	state, err := h.DraftService.BindCustomer(c.Request.Context(), sessionID, req.CustomerID)
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to bind customer")
		return
	}
	response.Success(c, draftView{
		SessionID:  state.SessionID,
		CustomerID: state.CustomerID,
		Draft:      state.Draft,
	})
}

// AddItem 加入单个目录选择
func (h *Handler) AddItem(c *gin.Context) {
	var req service.SelectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	sessionID := shared.EnsureDraftSession(c)
	state, err := h.DraftService.AddItem(c.Request.Context(), sessionID, req)
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to add item")
		return
	}
	response.Success(c, draftView{
		SessionID:  state.SessionID,
		CustomerID: state.CustomerID,
		Draft:      state.Draft,
	})
}

// bulkAddRequest 批量加入请求
type bulkAddRequest struct {
	Selections []service.SelectionInput `json:"selections" binding:"required,min=1,dive"`
}

// AddBulk 批量加入目录选择，部分成功：失败项逐条返回。
func (h *Handler) AddBulk(c *gin.Context) {
	var req bulkAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	sessionID := shared.EnsureDraftSession(c)
	state, failures, err := h.DraftService.AddBulk(c.Request.Context(), sessionID, req.Selections)
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to add items")
		return
	}
	response.Success(c, gin.H{
		"session_id":  state.SessionID,
		"customer_id": state.CustomerID,
		"draft":       state.Draft,
		"failures":    newSelectionFailureViews(failures),
	})
}

// RemoveItem 从草稿移除一行
func (h *Handler) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 64)
	if err != nil || productID == 0 {
		response.BadRequest(c, "invalid product_id")
		return
	}
	var combinationID *uint
	if raw := c.Query("combination_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid combination_id")
			return
		}
		cid := uint(parsed)
		combinationID = &cid
	}
	sessionID := shared.EnsureDraftSession(c)
	state, err := h.DraftService.RemoveItem(c.Request.Context(), sessionID, uint(productID), combinationID)
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to remove item")
		return
	}
	response.Success(c, draftView{
		SessionID:  state.SessionID,
		CustomerID: state.CustomerID,
		Draft:      state.Draft,
	})
}

// redeemRequest 兑换请求
type redeemRequest struct {
	Code string `json:"code"`
}

// Redeem 对草稿应用折扣码或礼品卡码
func (h *Handler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	sessionID := shared.EnsureDraftSession(c)
	state, result, err := h.DraftService.ApplyCode(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		respondWithMappedError(c, err, redeemErrorRules, response.CodeInternal, "failed to redeem code")
		return
	}
	response.Success(c, gin.H{
		"session_id":  state.SessionID,
		"customer_id": state.CustomerID,
		"draft":       state.Draft,
		"redemption":  result,
	})
}

// RemoveCode 撤销草稿上的折扣码与礼品卡
func (h *Handler) RemoveCode(c *gin.Context) {
	sessionID := shared.EnsureDraftSession(c)
	state, err := h.DraftService.RemoveCode(c.Request.Context(), sessionID)
	if err != nil {
		respondWithMappedError(c, err, draftCommonErrorRules, response.CodeInternal, "failed to remove code")
		return
	}
	response.Success(c, draftView{
		SessionID:  state.SessionID,
		CustomerID: state.CustomerID,
		Draft:      state.Draft,
	})
}
