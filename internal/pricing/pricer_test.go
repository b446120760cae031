package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/constants"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q failed: %v", s, err)
	}
	return v
}

func uintPtr(v uint) *uint { return &v }

func TestDiscountAmountPercentage(t *testing.T) {
	d := &Discount{ID: 1, DiscountType: constants.DiscountTypePercentage, Value: dec(t, "10")}
	got := DiscountAmount(d, dec(t, "19.99"), 3)
	want := dec(t, "5.997")
	if !got.Equal(want) {
		t.Fatalf("percentage amount = %s, want %s", got, want)
	}
}

func TestDiscountAmountFixedCappedAtLineTotal(t *testing.T) {
	d := &Discount{ID: 1, DiscountType: constants.DiscountTypeFixedAmount, Value: dec(t, "8")}
	got := DiscountAmount(d, dec(t, "5"), 2)
	if !got.Equal(dec(t, "10")) {
		t.Fatalf("fixed amount should cap at line total, got %s", got)
	}
	got = DiscountAmount(d, dec(t, "20"), 2)
	if !got.Equal(dec(t, "16")) {
		t.Fatalf("fixed amount below line total = %s, want 16", got)
	}
}

func TestDiscountAmountNilAndUnknownType(t *testing.T) {
	if got := DiscountAmount(nil, dec(t, "10"), 1); !got.IsZero() {
		t.Fatalf("nil discount amount = %s, want 0", got)
	}
	d := &Discount{ID: 1, DiscountType: "buy_one_get_one", Value: dec(t, "10")}
	if got := DiscountAmount(d, dec(t, "10"), 1); !got.IsZero() {
		t.Fatalf("unknown type amount = %s, want 0", got)
	}
}

func TestDiscountedUnitPriceNeverNegative(t *testing.T) {
	d := &Discount{ID: 1, DiscountType: constants.DiscountTypePercentage, Value: dec(t, "150")}
	got := DiscountedUnitPrice(d, dec(t, "10"), 1)
	if !got.IsZero() {
		t.Fatalf("discounted unit price = %s, want 0", got)
	}
}

func TestOrderDiscountAmountFixedCappedAtSubtotal(t *testing.T) {
	d := &Discount{ID: 1, DiscountType: constants.DiscountTypeFixedAmount, Value: dec(t, "50")}
	got := OrderDiscountAmount(d, dec(t, "30"))
	if !got.Equal(dec(t, "30")) {
		t.Fatalf("order fixed amount should cap at subtotal, got %s", got)
	}
}

func TestTaxAmount(t *testing.T) {
	got := TaxAmount(dec(t, "100"), dec(t, "7.5"))
	if !got.Equal(dec(t, "7.5")) {
		t.Fatalf("tax amount = %s, want 7.5", got)
	}
}

func TestRepriceLineItemIdempotent(t *testing.T) {
	d := &Discount{ID: 7, DiscountType: constants.DiscountTypePercentage, Value: dec(t, "25")}
	item := LineItem{
		ProductID:     1,
		Quantity:      2,
		OriginalPrice: dec(t, "40"),
		TaxRate:       dec(t, "10"),
	}
	RepriceLineItem(&item, d)
	first := item
	RepriceLineItem(&item, d)
	if !item.Subtotal.Equal(first.Subtotal) || !item.DiscountAmount.Equal(first.DiscountAmount) {
		t.Fatalf("reprice not idempotent: %s/%s vs %s/%s",
			item.Subtotal, item.DiscountAmount, first.Subtotal, first.DiscountAmount)
	}
	if !item.DiscountAmount.Equal(dec(t, "20")) {
		t.Fatalf("discount amount = %s, want 20", item.DiscountAmount)
	}
	if !item.Subtotal.Equal(dec(t, "60")) {
		t.Fatalf("subtotal = %s, want 60", item.Subtotal)
	}
	if !item.TaxAmount.Equal(dec(t, "6")) {
		t.Fatalf("tax amount = %s, want 6", item.TaxAmount)
	}
	if item.DiscountID == nil || *item.DiscountID != 7 {
		t.Fatalf("discount id not set: %v", item.DiscountID)
	}
}

func TestRepriceLineItemClearsDiscount(t *testing.T) {
	d := &Discount{ID: 7, DiscountType: constants.DiscountTypePercentage, Value: dec(t, "25")}
	item := LineItem{ProductID: 1, Quantity: 1, OriginalPrice: dec(t, "40")}
	RepriceLineItem(&item, d)
	RepriceLineItem(&item, nil)
	if item.DiscountID != nil || item.DiscountType != "" {
		t.Fatalf("discount fields should clear: id=%v type=%q", item.DiscountID, item.DiscountType)
	}
	if !item.Subtotal.Equal(dec(t, "40")) {
		t.Fatalf("subtotal after clear = %s, want 40", item.Subtotal)
	}
	if !item.DiscountedPrice.Equal(item.OriginalPrice) {
		t.Fatalf("discounted price after clear = %s, want original %s", item.DiscountedPrice, item.OriginalPrice)
	}
}
