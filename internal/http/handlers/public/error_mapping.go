package public

import (
	"errors"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			shared.RespondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	shared.RespondError(c, fallbackCode, fallbackMsg, err)
}

var draftCommonErrorRules = []mappedHandlerError{
	{target: service.ErrSessionRequired, code: response.CodeBadRequest, msg: "draft session required"},
	{target: service.ErrItemNotInDraft, code: response.CodeNotFound, msg: "item not in draft"},
	{target: catalog.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: catalog.ErrProductInactive, code: response.CodeBadRequest, msg: "product not available"},
	{target: catalog.ErrCombinationNotFound, code: response.CodeNotFound, msg: "combination not found"},
	{target: catalog.ErrCombinationInactive, code: response.CodeBadRequest, msg: "combination not available"},
	{target: catalog.ErrCustomerNotFound, code: response.CodeNotFound, msg: "customer not found"},
	{target: pricing.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
}

// 兑换失败都是可恢复的用户侧结果，统一 400
var redeemErrorRules = []mappedHandlerError{
	{target: pricing.ErrCodeNotFound, code: response.CodeBadRequest, msg: "code not found"},
	{target: pricing.ErrNoGiftCardContext, code: response.CodeBadRequest, msg: "code not found"},
	{target: pricing.ErrDiscountExhausted, code: response.CodeBadRequest, msg: "discount usage limit reached"},
	{target: pricing.ErrMinimumOrderNotMet, code: response.CodeBadRequest, msg: "minimum order amount not met"},
	{target: pricing.ErrDiscountMissingTargets, code: response.CodeBadRequest, msg: "discount has no targets"},
	{target: pricing.ErrGiftCardInactive, code: response.CodeBadRequest, msg: "gift card inactive"},
	{target: pricing.ErrGiftCardExpired, code: response.CodeBadRequest, msg: "gift card expired"},
	{target: pricing.ErrGiftCardEmpty, code: response.CodeBadRequest, msg: "gift card has no balance"},
	{target: pricing.ErrNothingToApply, code: response.CodeBadRequest, msg: "order total already zero"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrSessionRequired, code: response.CodeBadRequest, msg: "draft session required"},
	{target: service.ErrDraftEmpty, code: response.CodeBadRequest, msg: "draft has no items"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: catalog.ErrProductNotFound, code: response.CodeBadRequest, msg: "product no longer available"},
	{target: catalog.ErrProductInactive, code: response.CodeBadRequest, msg: "product no longer available"},
	{target: catalog.ErrCombinationNotFound, code: response.CodeBadRequest, msg: "combination no longer available"},
	{target: catalog.ErrCombinationInactive, code: response.CodeBadRequest, msg: "combination no longer available"},
	{target: pricing.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
}
