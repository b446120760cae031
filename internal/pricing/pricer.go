package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/constants"
)

var hundred = decimal.NewFromInt(100)

// DiscountAmount 计算一行的折扣总金额。
// percentage：单价×数量×百分比；fixed_amount：固定金额×数量，但不超过行原价总额。
// 折扣为空等价于零折扣。
func DiscountAmount(d *Discount, unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if d == nil || quantity <= 0 {
		return decimal.Zero
	}
	qty := decimal.NewFromInt(int64(quantity))
	lineTotal := unitPrice.Mul(qty)
	var amount decimal.Decimal
	switch d.DiscountType {
	case constants.DiscountTypePercentage:
		amount = lineTotal.Mul(d.Value).Div(hundred)
	case constants.DiscountTypeFixedAmount:
		amount = d.Value.Mul(qty)
		if amount.GreaterThan(lineTotal) {
			amount = lineTotal
		}
	default:
		return decimal.Zero
	}
	if amount.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return amount
}

// DiscountedUnitPrice 计算折后单价（不小于零）
func DiscountedUnitPrice(d *Discount, unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if d == nil || quantity <= 0 {
		return unitPrice
	}
	amount := DiscountAmount(d, unitPrice, quantity)
	discounted := unitPrice.Sub(amount.Div(decimal.NewFromInt(int64(quantity))))
	if discounted.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return discounted
}

// DiscountedSubtotal 计算折后行小计
func DiscountedSubtotal(unitPrice decimal.Decimal, quantity int, d *Discount) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	subtotal := unitPrice.Mul(qty).Sub(DiscountAmount(d, unitPrice, quantity))
	if subtotal.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return subtotal
}

// TaxAmount 按百分比税率计算税额
func TaxAmount(subtotal, taxRatePercent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRatePercent).Div(hundred)
}

// OrderDiscountAmount 计算订单级折扣金额。
// fixed_amount 以小计为上限，避免负总额。
func OrderDiscountAmount(d *Discount, subtotal decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	switch d.DiscountType {
	case constants.DiscountTypePercentage:
		return subtotal.Mul(d.Value).Div(hundred)
	case constants.DiscountTypeFixedAmount:
		if d.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return d.Value
	}
	return decimal.Zero
}

// RepriceLineItem 用给定折扣从原价重新计算一行的定价字段。
// 始终从 original_price 与 quantity 出发，重复调用结果一致。
func RepriceLineItem(item *LineItem, d *Discount) {
	amount := DiscountAmount(d, item.OriginalPrice, item.Quantity).Round(2)
	item.DiscountAmount = amount
	item.DiscountedPrice = DiscountedUnitPrice(d, item.OriginalPrice, item.Quantity).Round(2)
	item.Subtotal = DiscountedSubtotal(item.OriginalPrice, item.Quantity, d).Round(2)
	item.TaxAmount = TaxAmount(item.Subtotal, item.TaxRate).Round(2)
	if d != nil {
		id := d.ID
		item.DiscountID = &id
		item.DiscountType = d.DiscountType
	} else {
		item.DiscountID = nil
		item.DiscountType = ""
	}
}
