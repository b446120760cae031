package admin

import (
	"errors"
	"strconv"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 管理后台接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建管理后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

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

var discountErrorRules = []mappedHandlerError{
	{target: service.ErrDiscountNotFound, code: response.CodeNotFound, msg: "discount not found"},
	{target: service.ErrDiscountCodeTaken, code: response.CodeConflict, msg: "discount code already in use"},
	{target: service.ErrInvalidDiscountType, code: response.CodeBadRequest, msg: "invalid discount type"},
	{target: service.ErrInvalidAppliesTo, code: response.CodeBadRequest, msg: "invalid discount scope"},
	{target: service.ErrDiscountInvalid, code: response.CodeBadRequest, msg: "invalid discount input"},
}

var giftCardErrorRules = []mappedHandlerError{
	{target: service.ErrGiftCardNotFound, code: response.CodeNotFound, msg: "gift card not found"},
	{target: service.ErrGiftCardCodeTaken, code: response.CodeConflict, msg: "gift card code already in use"},
	{target: service.ErrCustomerNotFound, code: response.CodeNotFound, msg: "customer not found"},
	{target: service.ErrGiftCardInvalid, code: response.CodeBadRequest, msg: "invalid gift card input"},
}

// parseIDParam 解析路径上的数字ID
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
