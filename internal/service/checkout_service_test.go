package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/pricing"
)

func TestCheckoutRequiresSession(t *testing.T) {
	env := newServiceEnv(t)
	if _, err := env.newCheckout().Checkout(context.Background(), ""); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("err = %v, want ErrSessionRequired", err)
	}
}

func TestCheckoutEmptyDraft(t *testing.T) {
	env := newServiceEnv(t)
	if _, err := env.newCheckout().Checkout(context.Background(), "s1"); !errors.Is(err, ErrDraftEmpty) {
		t.Fatalf("err = %v, want ErrDraftEmpty", err)
	}
}

// 未启用队列时结算同步执行：使用次数递增、订单完成、草稿清空
func TestCheckoutSynchronousSettlement(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	if _, err := env.drafts.BindCustomer(ctx, "s1", 1); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
			t.Fatalf("add item failed: %v", err)
		}
	}
	if _, _, err := env.drafts.ApplyCode(ctx, "s1", "SAVE15"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	order, err := env.newCheckout().Checkout(ctx, "s1")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !strings.HasPrefix(order.OrderNo, "SF") {
		t.Fatalf("order no = %q", order.OrderNo)
	}
	if order.CustomerID != 1 || order.Status != constants.OrderStatusCompleted {
		t.Fatalf("order = %+v, want completed for customer 1", order)
	}
	// 小计 90，税 9，订单级自动折扣 5，码折扣 13.50
	if !order.Subtotal.Decimal.Equal(dec(t, "90")) ||
		!order.AutoDiscountAmount.Decimal.Equal(dec(t, "5")) ||
		!order.ManualDiscountAmount.Decimal.Equal(dec(t, "13.5")) ||
		!order.Total.Decimal.Equal(dec(t, "80.5")) {
		t.Fatalf("order amounts = %s / %s / %s / %s",
			order.Subtotal, order.AutoDiscountAmount, order.ManualDiscountAmount, order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("order items = %+v", order.Items)
	}
	if order.Items[0].DiscountID == nil || *order.Items[0].DiscountID != 1 {
		t.Fatalf("line discount snapshot missing: %+v", order.Items[0])
	}

	var stored models.Order
	if err := env.db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if stored.Status != constants.OrderStatusCompleted {
		t.Fatalf("stored status = %s, want completed", stored.Status)
	}

	// 行级自动折扣与手动折扣各递增一次；订单级自动折扣不追踪使用次数
	if got := env.discountUsages(t, 1); got != 1 {
		t.Fatalf("discount 1 usages = %d, want 1", got)
	}
	if got := env.discountUsages(t, 2); got != 1 {
		t.Fatalf("discount 2 usages = %d, want 1", got)
	}
	if got := env.discountUsages(t, 5); got != 0 {
		t.Fatalf("discount 5 usages = %d, want 0", got)
	}

	state, err := env.drafts.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get after checkout failed: %v", err)
	}
	if len(state.Draft.Items) != 0 {
		t.Fatalf("draft should be cleared after checkout: %+v", state.Draft)
	}
}

func TestCheckoutDeductsGiftCardBalance(t *testing.T) {
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

	order, err := env.newCheckout().Checkout(ctx, "s1")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if order.GiftCardID == nil || *order.GiftCardID != 1 {
		t.Fatalf("gift card snapshot missing: %+v", order)
	}
	if !order.GiftCardAmount.Decimal.Equal(dec(t, "49.5")) || !order.Total.Decimal.IsZero() {
		t.Fatalf("gift card / total = %s / %s", order.GiftCardAmount, order.Total)
	}
	// 余额 50 − 抵扣 49.5
	if got := env.giftCardBalance(t, 1); !got.Equal(dec(t, "0.5")) {
		t.Fatalf("balance = %s, want 0.5", got)
	}
}

// 下单前库存以目录为准重新校验，加入草稿后被抢占的库存会挡住结账
func TestCheckoutRechecksStock(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
			t.Fatalf("add item failed: %v", err)
		}
	}
	if err := env.db.Model(&models.Product{}).Where("id = ?", 1).Update("stock", 1).Error; err != nil {
		t.Fatalf("shrink stock: %v", err)
	}

	if _, err := env.newCheckout().Checkout(ctx, "s1"); !errors.Is(err, pricing.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	// 草稿保持原样，用户可以调整后重试
	state, err := env.drafts.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(state.Draft.Items) != 1 || state.Draft.Items[0].Quantity != 2 {
		t.Fatalf("draft should be untouched: %+v", state.Draft.Items)
	}
}

func TestCheckoutGetOrderByOrderNo(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	checkout := env.newCheckout()

	if _, err := env.drafts.AddItem(ctx, "s1", SelectionInput{ProductID: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	created, err := checkout.Checkout(ctx, "s1")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	order, err := checkout.GetOrderByOrderNo(created.OrderNo)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if order.ID != created.ID || len(order.Items) != 1 {
		t.Fatalf("order = %+v", order)
	}

	if _, err := checkout.GetOrderByOrderNo("SF00000000000000000000"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
	if _, err := checkout.GetOrderByOrderNo("   "); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}
