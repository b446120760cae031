package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/constants"
)

// Redeemer 折扣码/礼品卡兑换器。
// 先查折扣目录，再回退礼品卡；手动折扣与礼品卡在同一订单上互斥。
type Redeemer struct {
	*Resolver
}

// NewRedeemer 创建兑换器
func NewRedeemer(resolver *Resolver) *Redeemer {
	return &Redeemer{Resolver: resolver}
}

// ApplyCode 对草稿应用用户输入的码，返回新草稿与兑换结果。
// 空码为无操作；同一码在购物车不变的情况下重复应用结果一致。
func (rd *Redeemer) ApplyCode(draft OrderDraft, code string, customer *CustomerContext) (OrderDraft, RedemptionResult, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return draft, RedemptionResult{Outcome: OutcomeNone, Amount: decimal.Zero}, nil
	}

	now := rd.now()
	if d := rd.findManualDiscount(trimmed, now); d != nil {
		return rd.applyDiscountCode(draft, d)
	}

	return rd.applyGiftCardCode(draft, trimmed, customer, now)
}

// findManualDiscount 查找码对应的、当前可用的手动折扣
func (rd *Redeemer) findManualDiscount(code string, now time.Time) *Discount {
	for i := range rd.Discounts {
		d := &rd.Discounts[i]
		if d.Automatic || d.Code == "" || d.Code != code {
			continue
		}
		if !IsApplicable(d, now) {
			continue
		}
		return d
	}
	return nil
}

func (rd *Redeemer) applyDiscountCode(draft OrderDraft, d *Discount) (OrderDraft, RedemptionResult, error) {
	// 先撤销之前的手动折扣：失败路径要求清除既有应用，
	// 成功路径则需要从原价重算，保证重复兑换幂等。
	cleared := rd.ClearManualDiscount(draft)

	if Exhausted(d) {
		return cleared, RedemptionResult{Outcome: OutcomeNone, Amount: decimal.Zero}, ErrDiscountExhausted
	}
	subtotal := cleared.SumSubtotal()
	if d.MinOrderAmount != nil && d.MinOrderAmount.GreaterThan(subtotal) {
		return cleared, RedemptionResult{Outcome: OutcomeNone, Amount: decimal.Zero}, ErrMinimumOrderNotMet
	}

	switch d.AppliesTo {
	case constants.DiscountAppliesOrderTotal:
		amount := OrderDiscountAmount(d, subtotal).Round(2)
		out := cleared
		id := d.ID
		out.ManualDiscountID = &id
		out.ManualDiscountCode = d.Code
		out.ManualDiscountAmount = amount
		out = clearGiftCard(out)
		return out, RedemptionResult{
			Outcome: OutcomeApplied,
			Kind:    KindOrderDiscount,
			Amount:  amount,
		}, nil

	case constants.DiscountAppliesProduct, constants.DiscountAppliesCategory:
		if len(d.ProductTargets) == 0 && len(d.CategoryIDs) == 0 {
			return cleared, RedemptionResult{Outcome: OutcomeNone, Amount: decimal.Zero}, ErrDiscountMissingTargets
		}
		matched := matchedItemIndexes(cleared.Items, d)
		if len(matched) == 0 {
			// 码本身合法但购物车中没有目标商品：静默成功、零效果
			return draft, RedemptionResult{Outcome: OutcomeNotApplicable, Kind: KindItemDiscount, Amount: decimal.Zero}, nil
		}
		out := cleared
		total := decimal.Zero
		for _, idx := range matched {
			RepriceLineItem(&out.Items[idx], d)
			total = total.Add(out.Items[idx].DiscountAmount)
		}
		total = total.Round(2)
		id := d.ID
		out.ManualDiscountID = &id
		out.ManualDiscountCode = d.Code
		out.ManualDiscountAmount = total
		out = clearGiftCard(out)
		return out, RedemptionResult{
			Outcome:       OutcomeApplied,
			Kind:          KindItemDiscount,
			AffectedItems: len(matched),
			Amount:        total,
		}, nil
	}

	return draft, RedemptionResult{Outcome: OutcomeNone, Amount: decimal.Zero}, ErrCodeNotFound
}

func (rd *Redeemer) applyGiftCardCode(draft OrderDraft, code string, customer *CustomerContext, now time.Time) (OrderDraft, RedemptionResult, error) {
	zero := RedemptionResult{Outcome: OutcomeNone, Amount: decimal.Zero}
	if customer == nil || len(customer.GiftCards) == 0 {
		return draft, zero, ErrNoGiftCardContext
	}

	var card *GiftCard
	for i := range customer.GiftCards {
		if customer.GiftCards[i].Code == code {
			card = &customer.GiftCards[i]
			break
		}
	}
	if card == nil {
		// 不区分“不是折扣码”与“不是礼品卡”，避免泄露码所属命名空间
		return draft, zero, ErrCodeNotFound
	}
	if !card.IsActive {
		return draft, zero, ErrGiftCardInactive
	}
	if card.ExpirationDate != nil && card.ExpirationDate.Before(now) {
		return draft, zero, ErrGiftCardExpired
	}
	if !card.CurrentBalance.GreaterThan(decimal.Zero) {
		return draft, zero, ErrGiftCardEmpty
	}
	// 总额里已含草稿自身的礼品卡抵扣，先加回去得到真实应付，
	// 同一张卡重复应用才能得到相同结果
	payable := draft.Total
	if draft.GiftCardID != nil {
		payable = payable.Add(draft.GiftCardAmount)
	}
	if !payable.GreaterThan(decimal.Zero) {
		return draft, zero, ErrNothingToApply
	}

	amount := card.CurrentBalance
	if amount.GreaterThan(payable) {
		amount = payable
	}
	amount = amount.Round(2)

	out := rd.ClearManualDiscount(draft)
	id := card.ID
	out.GiftCardID = &id
	out.GiftCardAmount = amount
	return out, RedemptionResult{
		Outcome: OutcomeApplied,
		Kind:    KindGiftCard,
		Amount:  amount,
	}, nil
}

// ClearManualDiscount 撤销草稿上的手动折扣：
// 订单级字段清零，被该折扣改价的行回退到各自的自动折扣定价。
func (rd *Redeemer) ClearManualDiscount(draft OrderDraft) OrderDraft {
	out := draft.Clone()
	if out.ManualDiscountID != nil {
		manualID := *out.ManualDiscountID
		for i := range out.Items {
			it := &out.Items[i]
			if it.DiscountID == nil || *it.DiscountID != manualID {
				continue
			}
			auto := rd.FindApplicableDiscount(it.ProductID, it.CombinationID)
			RepriceLineItem(it, auto)
		}
	}
	out.ManualDiscountID = nil
	out.ManualDiscountCode = ""
	out.ManualDiscountAmount = decimal.Zero
	return out
}

func clearGiftCard(draft OrderDraft) OrderDraft {
	draft.GiftCardID = nil
	draft.GiftCardAmount = decimal.Zero
	return draft
}

// matchedItemIndexes 选出折扣目标集覆盖的行。
// product 范围：商品ID精确匹配；关联指定了组合则组合ID也须精确匹配，
// 未指定组合的关联匹配该商品的任意组合。
// category 范围：行分类与目标分类有交集即命中。
func matchedItemIndexes(items []LineItem, d *Discount) []int {
	var matched []int
	for i := range items {
		if itemMatchesDiscount(&items[i], d) {
			matched = append(matched, i)
		}
	}
	return matched
}

func itemMatchesDiscount(it *LineItem, d *Discount) bool {
	switch d.AppliesTo {
	case constants.DiscountAppliesProduct:
		for _, target := range d.ProductTargets {
			if target.ProductID != it.ProductID {
				continue
			}
			if target.CombinationID == nil {
				return true
			}
			if it.CombinationID != nil && *it.CombinationID == *target.CombinationID {
				return true
			}
		}
	case constants.DiscountAppliesCategory:
		for _, categoryID := range d.CategoryIDs {
			for _, itemCategoryID := range it.CategoryIDs {
				if categoryID == itemCategoryID {
					return true
				}
			}
		}
	}
	return false
}
