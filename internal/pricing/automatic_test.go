package pricing

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func testClock() func() time.Time { return fixedNow }

func TestIsApplicableWindow(t *testing.T) {
	now := fixedNow()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		d    Discount
		want bool
	}{
		{"inactive", Discount{IsActive: false}, false},
		{"no window", Discount{IsActive: true}, true},
		{"inside window", Discount{IsActive: true, StartDate: &past, EndDate: &future}, true},
		{"not started", Discount{IsActive: true, StartDate: &future}, false},
		{"ended", Discount{IsActive: true, EndDate: &past}, false},
		{"boundary start", Discount{IsActive: true, StartDate: &now}, true},
		{"boundary end", Discount{IsActive: true, EndDate: &now}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsApplicable(&tc.d, now); got != tc.want {
				t.Fatalf("IsApplicable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExhausted(t *testing.T) {
	limit := 3
	if Exhausted(&Discount{UsageLimit: nil, UsagesCount: 100}) {
		t.Fatalf("no limit should never exhaust")
	}
	if Exhausted(&Discount{UsageLimit: &limit, UsagesCount: 2}) {
		t.Fatalf("below limit should not exhaust")
	}
	if !Exhausted(&Discount{UsageLimit: &limit, UsagesCount: 3}) {
		t.Fatalf("at limit should exhaust")
	}
}

func TestFindApplicableDiscountCombinationMatching(t *testing.T) {
	r := NewResolver([]Discount{
		{
			ID: 1, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "10"),
			AppliesTo:      constants.DiscountAppliesProduct,
			ProductTargets: []ProductTarget{{ProductID: 5, CombinationID: uintPtr(9)}},
		},
		{
			ID: 2, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "20"),
			AppliesTo:      constants.DiscountAppliesProduct,
			ProductTargets: []ProductTarget{{ProductID: 5}},
		},
	}, testClock())

	// 基础商品（无组合）只匹配无组合的关联
	if d := r.FindApplicableDiscount(5, nil); d == nil || d.ID != 2 {
		t.Fatalf("base product resolved %v, want discount 2", d)
	}
	// 指定组合只匹配相同组合的关联
	if d := r.FindApplicableDiscount(5, uintPtr(9)); d == nil || d.ID != 1 {
		t.Fatalf("combination 9 resolved %v, want discount 1", d)
	}
	if d := r.FindApplicableDiscount(5, uintPtr(8)); d != nil {
		t.Fatalf("combination 8 resolved discount %d, want none", d.ID)
	}
	if d := r.FindApplicableDiscount(6, nil); d != nil {
		t.Fatalf("unrelated product resolved discount %d, want none", d.ID)
	}
}

func TestFindApplicableDiscountTieBreakFirstInCatalogOrder(t *testing.T) {
	r := NewResolver([]Discount{
		{
			ID: 10, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "5"),
			AppliesTo:      constants.DiscountAppliesProduct,
			ProductTargets: []ProductTarget{{ProductID: 1}},
		},
		{
			ID: 11, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "50"),
			AppliesTo:      constants.DiscountAppliesProduct,
			ProductTargets: []ProductTarget{{ProductID: 1}},
		},
	}, testClock())

	if d := r.FindApplicableDiscount(1, nil); d == nil || d.ID != 10 {
		t.Fatalf("tie-break resolved %v, want first discount 10", d)
	}
}

func TestFindApplicableDiscountSkipsManualAndInactive(t *testing.T) {
	future := fixedNow().Add(time.Hour)
	r := NewResolver([]Discount{
		{
			ID: 1, Automatic: false, IsActive: true, Code: "SAVE",
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "10"),
			AppliesTo:      constants.DiscountAppliesProduct,
			ProductTargets: []ProductTarget{{ProductID: 1}},
		},
		{
			ID: 2, Automatic: true, IsActive: true, StartDate: &future,
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "10"),
			AppliesTo:      constants.DiscountAppliesProduct,
			ProductTargets: []ProductTarget{{ProductID: 1}},
		},
	}, testClock())

	if d := r.FindApplicableDiscount(1, nil); d != nil {
		t.Fatalf("resolved discount %d, want none", d.ID)
	}
}

func TestResolveOrderDiscount(t *testing.T) {
	min := dec(t, "200")
	r := NewResolver([]Discount{
		{
			ID: 1, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "10"),
			AppliesTo: constants.DiscountAppliesOrderTotal,
		},
		{
			ID: 2, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "15"),
			AppliesTo: constants.DiscountAppliesOrderTotal, MinOrderAmount: &min,
		},
	}, testClock())

	// 低于 2 号折扣门槛时只有 1 号可选
	got := r.ResolveOrderDiscount(dec(t, "100"))
	if !got.Equal(dec(t, "10")) {
		t.Fatalf("order discount below threshold = %s, want 10", got)
	}
	// 达到门槛后取 value 更大的 2 号
	got = r.ResolveOrderDiscount(dec(t, "200"))
	if !got.Equal(dec(t, "30")) {
		t.Fatalf("order discount at threshold = %s, want 30", got)
	}
}

// 订单级候选按原始 value 比较，百分比与固定金额不做换算：
// 20 元固定折扣赢过 25% 折扣，即使 25% 在大额订单上更优。
func TestResolveOrderDiscountValueComparisonQuirk(t *testing.T) {
	r := NewResolver([]Discount{
		{
			ID: 1, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypePercentage, Value: dec(t, "25"),
			AppliesTo: constants.DiscountAppliesOrderTotal,
		},
		{
			ID: 2, Automatic: true, IsActive: true,
			DiscountType: constants.DiscountTypeFixedAmount, Value: dec(t, "20"),
			AppliesTo: constants.DiscountAppliesOrderTotal,
		},
	}, testClock())

	got := r.ResolveOrderDiscount(dec(t, "1000"))
	if !got.Equal(dec(t, "20")) {
		t.Fatalf("order discount = %s, want fixed 20 (larger raw value wins)", got)
	}
}

func TestResolveOrderDiscountNoCandidates(t *testing.T) {
	r := NewResolver(nil, testClock())
	if got := r.ResolveOrderDiscount(dec(t, "100")); !got.IsZero() {
		t.Fatalf("order discount with no catalog = %s, want 0", got)
	}
}
