package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/constants"
)

// Resolver 自动折扣解析器，持有折扣目录快照（目录顺序即平局顺序）
type Resolver struct {
	Discounts []Discount
	Now       func() time.Time
}

// NewResolver 创建自动折扣解析器
func NewResolver(discounts []Discount, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		Discounts: discounts,
		Now:       now,
	}
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// FindApplicableDiscount 解析（商品，规格组合）当前适用的自动折扣。
// 关联上的组合ID必须与请求的组合ID完全一致（空只匹配空）。
// 多个命中时取目录顺序的第一个，保证确定性。
func (r *Resolver) FindApplicableDiscount(productID uint, combinationID *uint) *Discount {
	now := r.now()
	for i := range r.Discounts {
		d := &r.Discounts[i]
		if !d.Automatic || d.AppliesTo != constants.DiscountAppliesProduct {
			continue
		}
		if !IsApplicable(d, now) {
			continue
		}
		for _, target := range d.ProductTargets {
			if target.ProductID != productID {
				continue
			}
			if !sameCombination(target.CombinationID, combinationID) {
				continue
			}
			return d
		}
	}
	return nil
}

// ResolveOrderDiscount 解析订单级自动折扣金额。
// 候选为 automatic 且 applies_to=order_total 且当前可用、门槛不超过小计的折扣；
// 取 value 最大者（按原始数值比较，不区分百分比与固定金额——保留原有行为）。
// 无候选时返回 0。
func (r *Resolver) ResolveOrderDiscount(subtotal decimal.Decimal) decimal.Decimal {
	now := r.now()
	var best *Discount
	for i := range r.Discounts {
		d := &r.Discounts[i]
		if !d.Automatic || d.AppliesTo != constants.DiscountAppliesOrderTotal {
			continue
		}
		if !IsApplicable(d, now) {
			continue
		}
		if d.MinOrderAmount != nil && d.MinOrderAmount.GreaterThan(subtotal) {
			continue
		}
		if best == nil || d.Value.GreaterThan(best.Value) {
			best = d
		}
	}
	if best == nil {
		return decimal.Zero
	}
	return OrderDiscountAmount(best, subtotal).Round(2)
}

func sameCombination(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
