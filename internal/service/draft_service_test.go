package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/pricing"
)

func TestDraftGetRequiresSession(t *testing.T) {
	env := newServiceEnv(t)
	if _, err := env.drafts.Get(context.Background(), "   "); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("err = %v, want ErrSessionRequired", err)
	}
}

func TestDraftGetUnknownSessionReturnsEmptyDraft(t *testing.T) {
	env := newServiceEnv(t)
	state, err := env.drafts.Get(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if state.SessionID != "fresh" || len(state.Draft.Items) != 0 {
		t.Fatalf("expected empty draft, got %+v", state)
	}
}

func TestDraftAddItemAppliesAutomaticDiscount(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	state, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if len(state.Draft.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(state.Draft.Items))
	}
	it := state.Draft.Items[0]
	if it.DiscountID == nil || *it.DiscountID != 1 {
		t.Fatalf("item discount = %v, want automatic 1", it.DiscountID)
	}
	// 50 的 10% 自动折扣：折后单价 45，税 10% 即 4.50
	if !it.DiscountedPrice.Equal(dec(t, "45")) || !it.Subtotal.Equal(dec(t, "45")) {
		t.Fatalf("line pricing = %s / %s, want 45 / 45", it.DiscountedPrice, it.Subtotal)
	}
	if !it.TaxAmount.Equal(dec(t, "4.5")) {
		t.Fatalf("tax = %s, want 4.5", it.TaxAmount)
	}
	if !state.Draft.Total.Equal(dec(t, "49.5")) {
		t.Fatalf("total = %s, want 49.5", state.Draft.Total)
	}

	stored, err := env.drafts.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Draft.Items) != 1 || !stored.Draft.Total.Equal(dec(t, "49.5")) {
		t.Fatalf("draft not persisted: %+v", stored.Draft)
	}
}

func TestDraftAddItemIncrementsExistingLine(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	state, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(state.Draft.Items) != 1 || state.Draft.Items[0].Quantity != 2 {
		t.Fatalf("expected one line with quantity 2, got %+v", state.Draft.Items)
	}
	if !state.Draft.Items[0].Subtotal.Equal(dec(t, "90")) {
		t.Fatalf("subtotal = %s, want 90", state.Draft.Items[0].Subtotal)
	}
	// 小计 90 触发满 70 减 5 的订单级自动折扣：90 + 9 − 5 = 94
	if !state.Draft.AutoDiscountAmount.Equal(dec(t, "5")) {
		t.Fatalf("auto discount = %s, want 5", state.Draft.AutoDiscountAmount)
	}
	if !state.Draft.Total.Equal(dec(t, "94")) {
		t.Fatalf("total = %s, want 94", state.Draft.Total)
	}
}

func TestDraftAddItemCombination(t *testing.T) {
	env := newServiceEnv(t)
	state, err := env.drafts.AddItem(context.Background(), "s1", SelectionInput{ProductID: 2, CombinationID: uintPtr(1)})
	if err != nil {
		t.Fatalf("add combination failed: %v", err)
	}
	it := state.Draft.Items[0]
	if it.ProductName != "mouse / black" {
		t.Fatalf("name = %q, want combination name", it.ProductName)
	}
	if !it.OriginalPrice.Equal(dec(t, "30")) || it.Stock != 3 {
		t.Fatalf("combination price/stock not snapshotted: %+v", it)
	}
	if it.DiscountID != nil {
		t.Fatalf("unexpected discount %v", it.DiscountID)
	}
}

func TestDraftAddItemErrors(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		session string
		input   SelectionInput
		want    error
	}{
		{"empty session", "", SelectionInput{ProductID: 1}, ErrSessionRequired},
		{"unknown product", "s1", SelectionInput{ProductID: 99}, catalog.ErrProductNotFound},
		{"inactive product", "s1", SelectionInput{ProductID: 4}, catalog.ErrProductInactive},
		{"unknown combination", "s1", SelectionInput{ProductID: 1, CombinationID: uintPtr(99)}, catalog.ErrCombinationNotFound},
		{"sold out", "s1", SelectionInput{ProductID: 3}, pricing.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.drafts.AddItem(ctx, tc.session, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDraftAddItemRespectsStockOnIncrement(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	sel := SelectionInput{ProductID: 2, CombinationID: uintPtr(1)}

	for i := 0; i < 3; i++ {
		if _, err := env.drafts.AddItem(ctx, "s1", sel); err != nil {
			t.Fatalf("add %d failed: %v", i+1, err)
		}
	}
	if _, err := env.drafts.AddItem(ctx, "s1", sel); !errors.Is(err, pricing.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
}

func TestDraftAddBulkPartialSuccess(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	state, failures, err := env.drafts.AddBulk(ctx, "s1", []SelectionInput{
		{ProductID: 1},
		{ProductID: 99},
		{ProductID: 3},
		{ProductID: 2, CombinationID: uintPtr(1)},
	})
	if err != nil {
		t.Fatalf("bulk add failed: %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(failures))
	}
	// 失败索引指向原始输入位置
	if failures[0].Index != 1 || !errors.Is(failures[0].Err, catalog.ErrProductNotFound) {
		t.Fatalf("failure 0 = %+v (%v)", failures[0], failures[0].Err)
	}
	if failures[1].Index != 2 || !errors.Is(failures[1].Err, pricing.ErrInsufficientStock) {
		t.Fatalf("failure 1 = %+v (%v)", failures[1], failures[1].Err)
	}

	if len(state.Draft.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(state.Draft.Items))
	}
	for i, it := range state.Draft.Items {
		if it.Index != i {
			t.Fatalf("item %d has index %d", i, it.Index)
		}
	}
	// 小计 45 + 30 = 75，税 4.5，订单级自动折扣 5
	if !state.Draft.Subtotal.Equal(dec(t, "75")) || !state.Draft.Total.Equal(dec(t, "74.5")) {
		t.Fatalf("totals = %s / %s, want 75 / 74.5", state.Draft.Subtotal, state.Draft.Total)
	}
}

func TestDraftRemoveItem(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, _, err := env.drafts.AddBulk(ctx, "s1", []SelectionInput{
		{ProductID: 1},
		{ProductID: 2, CombinationID: uintPtr(1)},
	}); err != nil {
		t.Fatalf("seed draft failed: %v", err)
	}

	state, err := env.drafts.RemoveItem(ctx, "s1", 2, uintPtr(1))
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(state.Draft.Items) != 1 || state.Draft.Items[0].ProductID != 1 || state.Draft.Items[0].Index != 0 {
		t.Fatalf("unexpected items after remove: %+v", state.Draft.Items)
	}
	if !state.Draft.Total.Equal(dec(t, "49.5")) {
		t.Fatalf("total = %s, want 49.5", state.Draft.Total)
	}

	if _, err := env.drafts.RemoveItem(ctx, "s1", 2, uintPtr(1)); !errors.Is(err, ErrItemNotInDraft) {
		t.Fatalf("err = %v, want ErrItemNotInDraft", err)
	}
}

// 行集合变化后重新评估已应用的折扣码，不再满足门槛时静默撤销
func TestDraftRemoveItemDropsStaleManualCode(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, _, err := env.drafts.AddBulk(ctx, "s1", []SelectionInput{
		{ProductID: 1},
		{ProductID: 2, CombinationID: uintPtr(1)},
	}); err != nil {
		t.Fatalf("seed draft failed: %v", err)
	}
	state, _, err := env.drafts.ApplyCode(ctx, "s1", "OVER60")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	// 小计 75：码折扣 7.5，总额 75 + 4.5 − 5 − 7.5 = 67
	if !state.Draft.ManualDiscountAmount.Equal(dec(t, "7.5")) || !state.Draft.Total.Equal(dec(t, "67")) {
		t.Fatalf("totals = %s / %s, want 7.5 / 67", state.Draft.ManualDiscountAmount, state.Draft.Total)
	}

	state, err = env.drafts.RemoveItem(ctx, "s1", 2, uintPtr(1))
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if state.Draft.ManualDiscountCode != "" || state.Draft.ManualDiscountID != nil {
		t.Fatalf("stale code should be dropped: %+v", state.Draft)
	}
	if !state.Draft.Total.Equal(dec(t, "49.5")) {
		t.Fatalf("total = %s, want 49.5", state.Draft.Total)
	}

	stored, err := env.drafts.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Draft.ManualDiscountCode != "" {
		t.Fatalf("dropped code still persisted: %+v", stored.Draft)
	}
}

func TestDraftApplyCodeOrderDiscount(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	state, result, err := env.drafts.ApplyCode(ctx, "s1", "SAVE15")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if result.Outcome != pricing.OutcomeApplied || result.Kind != pricing.KindOrderDiscount {
		t.Fatalf("result = %+v, want applied order discount", result)
	}
	// 小计 45 的 15% = 6.75
	if !result.Amount.Equal(dec(t, "6.75")) {
		t.Fatalf("amount = %s, want 6.75", result.Amount)
	}
	if state.Draft.ManualDiscountCode != "SAVE15" {
		t.Fatalf("code = %q, want SAVE15", state.Draft.ManualDiscountCode)
	}
	if !state.Draft.Total.Equal(dec(t, "42.75")) {
		t.Fatalf("total = %s, want 42.75", state.Draft.Total)
	}
}

func TestDraftApplyCodeExhausted(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "GONE"); !errors.Is(err, pricing.ErrDiscountExhausted) {
		t.Fatalf("err = %v, want ErrDiscountExhausted", err)
	}
}

// 失败的兑换清除此前的手动折扣，清除后的草稿仍会持久化
func TestDraftApplyCodeFailureClearsPreviousManual(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "SAVE15"); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	// OVER60 门槛 60 > 小计 45
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "OVER60"); !errors.Is(err, pricing.ErrMinimumOrderNotMet) {
		t.Fatalf("err = %v, want ErrMinimumOrderNotMet", err)
	}

	stored, err := env.drafts.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Draft.ManualDiscountCode != "" || !stored.Draft.ManualDiscountAmount.IsZero() {
		t.Fatalf("previous manual discount should be cleared: %+v", stored.Draft)
	}
	if !stored.Draft.Total.Equal(dec(t, "49.5")) {
		t.Fatalf("total = %s, want 49.5", stored.Draft.Total)
	}
}

func TestDraftApplyCodeUnknown(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	// 匿名会话没有礼品卡上下文
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "NOPE"); !errors.Is(err, pricing.ErrNoGiftCardContext) {
		t.Fatalf("err = %v, want ErrNoGiftCardContext", err)
	}

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "NOPE"); !errors.Is(err, pricing.ErrCodeNotFound) {
		t.Fatalf("err = %v, want ErrCodeNotFound", err)
	}
}

func TestDraftBindCustomer(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 99); !errors.Is(err, catalog.ErrCustomerNotFound) {
		t.Fatalf("err = %v, want ErrCustomerNotFound", err)
	}

	state, err := env.drafts.BindCustomer(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if state.CustomerID != 1 {
		t.Fatalf("customer = %d, want 1", state.CustomerID)
	}
	stored, err := env.drafts.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.CustomerID != 1 {
		t.Fatalf("binding not persisted: %+v", stored)
	}
}

func TestDraftApplyGiftCard(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	// 余额 50 超过应付 49.5，抵扣封顶到应付金额
	state, result, err := env.drafts.ApplyCode(ctx, "s1", "GIFT50")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if result.Kind != pricing.KindGiftCard || !result.Amount.Equal(dec(t, "49.5")) {
		t.Fatalf("result = %+v, want gift card 49.5", result)
	}
	if state.Draft.GiftCardID == nil || *state.Draft.GiftCardID != 1 {
		t.Fatalf("gift card id = %v, want 1", state.Draft.GiftCardID)
	}
	if !state.Draft.Total.IsZero() {
		t.Fatalf("total = %s, want 0", state.Draft.Total)
	}
}

// 草稿打开期间卡过期，下一次购物车变化时抵扣被撤销
func TestDraftGiftCardExpiresWhileDraftOpen(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "GIFT50"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	expired := fixedNow().Add(-time.Hour)
	if err := env.db.Model(&models.GiftCard{}).Where("id = ?", 1).
		Update("expiration_date", expired).Error; err != nil {
		t.Fatalf("expire card: %v", err)
	}

	state, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 2, CombinationID: uintPtr(1)})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if state.Draft.GiftCardID != nil || !state.Draft.GiftCardAmount.IsZero() {
		t.Fatalf("expired card should be dropped: %+v", state.Draft)
	}
	// 键盘 45 + 鼠标 30，税 4.5，订单级自动折扣 5
	if !state.Draft.Total.Equal(dec(t, "74.5")) {
		t.Fatalf("total = %s, want 74.5", state.Draft.Total)
	}
}

// 界面重渲染可能重复触发应用，购物车不变时结果必须一致
func TestDraftApplyGiftCardReapplicationStable(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	first, _, err := env.drafts.ApplyCode(ctx, "s1", "GIFT50")
	if err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if !first.Draft.GiftCardAmount.Equal(dec(t, "49.5")) || !first.Draft.Total.IsZero() {
		t.Fatalf("first apply = %s / %s, want 49.5 / 0", first.Draft.GiftCardAmount, first.Draft.Total)
	}

	second, result, err := env.drafts.ApplyCode(ctx, "s1", "GIFT50")
	if err != nil {
		t.Fatalf("second apply of same code on unchanged cart failed: %v", err)
	}
	if result.Kind != pricing.KindGiftCard || !result.Amount.Equal(dec(t, "49.5")) {
		t.Fatalf("result = %+v, want gift card 49.5", result)
	}
	if !second.Draft.GiftCardAmount.Equal(first.Draft.GiftCardAmount) ||
		!second.Draft.Total.Equal(first.Draft.Total) {
		t.Fatalf("re-apply changed the draft: %s / %s", second.Draft.GiftCardAmount, second.Draft.Total)
	}
}

func TestDraftApplyGiftCardPartialBalance(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	state, result, err := env.drafts.ApplyCode(ctx, "s1", "GIFT10")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !result.Amount.Equal(dec(t, "10")) {
		t.Fatalf("amount = %s, want full balance 10", result.Amount)
	}
	if !state.Draft.Total.Equal(dec(t, "39.5")) {
		t.Fatalf("total = %s, want 39.5", state.Draft.Total)
	}
}

func TestDraftApplyGiftCardEmpty(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "GIFT0"); !errors.Is(err, pricing.ErrGiftCardEmpty) {
		t.Fatalf("err = %v, want ErrGiftCardEmpty", err)
	}
}

// 手动折扣与礼品卡互斥：后应用的一方清除另一方
func TestDraftManualAndGiftCardMutuallyExclusive(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "SAVE15"); err != nil {
		t.Fatalf("discount apply failed: %v", err)
	}

	state, _, err := env.drafts.ApplyCode(ctx, "s1", "GIFT50")
	if err != nil {
		t.Fatalf("gift card apply failed: %v", err)
	}
	if state.Draft.ManualDiscountCode != "" || state.Draft.ManualDiscountID != nil {
		t.Fatalf("gift card should clear manual discount: %+v", state.Draft)
	}
	// 抵扣按当时应付 42.75 封顶，手动折扣撤销后剩余应付 6.75
	if !state.Draft.GiftCardAmount.Equal(dec(t, "42.75")) || !state.Draft.Total.Equal(dec(t, "6.75")) {
		t.Fatalf("gift card / total = %s / %s", state.Draft.GiftCardAmount, state.Draft.Total)
	}

	state, _, err = env.drafts.ApplyCode(ctx, "s1", "SAVE15")
	if err != nil {
		t.Fatalf("discount re-apply failed: %v", err)
	}
	if state.Draft.GiftCardID != nil || !state.Draft.GiftCardAmount.IsZero() {
		t.Fatalf("discount should clear gift card: %+v", state.Draft)
	}
	if !state.Draft.Total.Equal(dec(t, "42.75")) {
		t.Fatalf("total = %s, want 42.75", state.Draft.Total)
	}
}

func TestDraftRemoveCode(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "GIFT50"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	state, err := env.drafts.RemoveCode(ctx, "s1")
	if err != nil {
		t.Fatalf("remove code failed: %v", err)
	}
	if state.Draft.GiftCardID != nil || state.Draft.ManualDiscountID != nil {
		t.Fatalf("codes should be cleared: %+v", state.Draft)
	}
	if !state.Draft.Total.Equal(dec(t, "49.5")) {
		t.Fatalf("total = %s, want 49.5", state.Draft.Total)
	}
}
