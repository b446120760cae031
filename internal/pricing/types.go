package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount 折扣规则快照（引擎侧只读视图）
type Discount struct {
	ID             uint             `json:"id"`
	Code           string           `json:"code"`           // 折扣码（为空表示仅自动触发）
	Automatic      bool             `json:"automatic"`      // 是否自动触发
	DiscountType   string           `json:"discount_type"`  // percentage / fixed_amount
	Value          decimal.Decimal  `json:"value"`          // 百分比或固定金额
	AppliesTo      string           `json:"applies_to"`     // order_total / product / category
	ProductTargets []ProductTarget  `json:"product_targets,omitempty"`
	CategoryIDs    []uint           `json:"category_ids,omitempty"`
	MinOrderAmount *decimal.Decimal `json:"minimum_order_amount,omitempty"`
	UsageLimit     *int             `json:"usage_limit,omitempty"`
	UsagesCount    int              `json:"usages_count"`
	StartDate      *time.Time       `json:"start_date,omitempty"`
	EndDate        *time.Time       `json:"end_date,omitempty"`
	IsActive       bool             `json:"is_active"`
}

// ProductTarget 折扣的商品关联目标，可细化到具体规格组合
type ProductTarget struct {
	ProductID     uint  `json:"product_id"`
	CombinationID *uint `json:"combination_id,omitempty"` // 为空表示不限定组合
}

// GiftCard 礼品卡快照（引擎侧只读视图）
type GiftCard struct {
	ID             uint            `json:"id"`
	Code           string          `json:"code"`
	IsActive       bool            `json:"is_active"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"` // 为空表示不过期
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// CustomerContext 当前客户上下文（礼品卡兑换需要）
type CustomerContext struct {
	CustomerID uint       `json:"customer_id"`
	GiftCards  []GiftCard `json:"gift_cards"`
}

// LineItem 订单草稿行，按（商品，规格组合）去重
type LineItem struct {
	Index           int             `json:"index"`
	ProductID       uint            `json:"product_id"`
	CombinationID   *uint           `json:"combination_id,omitempty"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	DiscountID      *uint           `json:"discount_id,omitempty"`
	DiscountType    string          `json:"discount_type,omitempty"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Stock           int             `json:"stock"`       // 选择时刻的库存快照
	CategoryIDs     []uint          `json:"category_ids,omitempty"`
}

// SameIdentity 判断与给定（商品，规格组合）是否同一行
func (it LineItem) SameIdentity(productID uint, combinationID *uint) bool {
	if it.ProductID != productID {
		return false
	}
	if it.CombinationID == nil || combinationID == nil {
		return it.CombinationID == nil && combinationID == nil
	}
	return *it.CombinationID == *combinationID
}

// OrderDraft 订单草稿，由调用方持有并按值传入各操作
type OrderDraft struct {
	Items                []LineItem      `json:"order_items"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	AutoDiscountAmount   decimal.Decimal `json:"auto_discount_amount"`
	Total                decimal.Decimal `json:"total"`
	ManualDiscountID     *uint           `json:"manual_discount_id,omitempty"`
	ManualDiscountCode   string          `json:"manual_discount_code,omitempty"`
	ManualDiscountAmount decimal.Decimal `json:"manual_discount_amount"`
	GiftCardID           *uint           `json:"gift_card_id,omitempty"`
	GiftCardAmount       decimal.Decimal `json:"gift_card_amount"`
}

// Clone 深拷贝草稿（操作返回新草稿而非原地修改）
func (d OrderDraft) Clone() OrderDraft {
	out := d
	out.Items = make([]LineItem, len(d.Items))
	copy(out.Items, d.Items)
	for i := range out.Items {
		if d.Items[i].CombinationID != nil {
			cid := *d.Items[i].CombinationID
			out.Items[i].CombinationID = &cid
		}
		if d.Items[i].DiscountID != nil {
			did := *d.Items[i].DiscountID
			out.Items[i].DiscountID = &did
		}
		if len(d.Items[i].CategoryIDs) > 0 {
			out.Items[i].CategoryIDs = append([]uint(nil), d.Items[i].CategoryIDs...)
		}
	}
	if d.ManualDiscountID != nil {
		id := *d.ManualDiscountID
		out.ManualDiscountID = &id
	}
	if d.GiftCardID != nil {
		id := *d.GiftCardID
		out.GiftCardID = &id
	}
	return out
}

// SumSubtotal 汇总所有行小计
func (d OrderDraft) SumSubtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range d.Items {
		total = total.Add(d.Items[i].Subtotal)
	}
	return total.Round(2)
}

// CatalogSelection 目录选择项（单个或批量加入草稿的输入）
type CatalogSelection struct {
	ProductID     uint            `json:"product_id"`
	CombinationID *uint           `json:"combination_id,omitempty"`
	ProductName   string          `json:"product_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Stock         int             `json:"stock"` // 选择时刻的库存快照
	CategoryIDs   []uint          `json:"category_ids,omitempty"`
	Discount      *Discount       `json:"discount,omitempty"` // 选择时捕获的行级自动折扣
}

// SelectionFailure 批量加入时单个选择项的失败记录
type SelectionFailure struct {
	Index         int   `json:"index"`
	ProductID     uint  `json:"product_id"`
	CombinationID *uint `json:"combination_id,omitempty"`
	Err           error `json:"-"`
}

// Outcome 兑换结果类别
type Outcome string

const (
	// OutcomeNone 空码等无操作
	OutcomeNone Outcome = "none"
	// OutcomeApplied 已生效
	OutcomeApplied Outcome = "applied"
	// OutcomeNotApplicable 结构上合法但对当前购物车无效（静默成功）
	OutcomeNotApplicable Outcome = "not_applicable"
)

// RedemptionKind 兑换命中的类型
type RedemptionKind string

const (
	KindOrderDiscount RedemptionKind = "order_discount"
	KindItemDiscount  RedemptionKind = "item_discount"
	KindGiftCard      RedemptionKind = "gift_card"
)

// RedemptionResult 兑换结果
type RedemptionResult struct {
	Outcome       Outcome         `json:"outcome"`
	Kind          RedemptionKind  `json:"kind,omitempty"`
	AffectedItems int             `json:"affected_items"`
	Amount        decimal.Decimal `json:"amount"`
}
