package pricing

import "errors"

// 业务兑换错误（均为可恢复的用户侧结果，通过 errors.Is 匹配）
var (
	ErrCodeNotFound           = errors.New("code not found")
	ErrNoGiftCardContext      = errors.New("no gift card context")
	ErrDiscountExhausted      = errors.New("discount usage limit reached")
	ErrMinimumOrderNotMet     = errors.New("minimum order amount not met")
	ErrDiscountMissingTargets = errors.New("discount has no targets configured")
	ErrGiftCardInactive       = errors.New("gift card inactive")
	ErrGiftCardExpired        = errors.New("gift card expired")
	ErrGiftCardEmpty          = errors.New("gift card has no balance")
	ErrNothingToApply         = errors.New("order total already zero")
	ErrInsufficientStock      = errors.New("insufficient stock")
)
