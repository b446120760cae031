package service

import "errors"

// 服务层业务错误（通过 errors.Is 匹配）
var (
	ErrSessionRequired     = errors.New("draft session required")
	ErrDraftEmpty          = errors.New("draft has no items")
	ErrItemNotInDraft      = errors.New("item not in draft")
	ErrDiscountNotFound    = errors.New("discount not found")
	ErrDiscountCodeTaken   = errors.New("discount code already exists")
	ErrGiftCardNotFound    = errors.New("gift card not found")
	ErrGiftCardCodeTaken   = errors.New("gift card code already exists for customer")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrInvalidDiscountType = errors.New("invalid discount type")
	ErrInvalidAppliesTo    = errors.New("invalid applies_to scope")
	ErrOrderNotFound       = errors.New("order not found")
)
