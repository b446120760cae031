package pricing

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/constants"
)

func newTestSynchronizer(t *testing.T, discounts []Discount) *Synchronizer {
	t.Helper()
	return NewSynchronizer(NewResolver(discounts, testClock()))
}

func TestAddSelectionNewItem(t *testing.T) {
	s := newTestSynchronizer(t, nil)
	out, err := s.AddSelection(OrderDraft{}, CatalogSelection{
		ProductID: 1, ProductName: "keyboard",
		UnitPrice: dec(t, "50"), TaxRate: dec(t, "10"), Stock: 3,
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(out.Items))
	}
	it := out.Items[0]
	if it.Quantity != 1 || it.Index != 0 {
		t.Fatalf("item = %+v, want quantity 1 index 0", it)
	}
	if !it.Subtotal.Equal(dec(t, "50")) || !it.TaxAmount.Equal(dec(t, "5")) {
		t.Fatalf("pricing = %s/%s, want 50/5", it.Subtotal, it.TaxAmount)
	}
}

func TestAddSelectionMergesByIdentity(t *testing.T) {
	s := newTestSynchronizer(t, nil)
	sel := CatalogSelection{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 3}
	draft, err := s.AddSelection(OrderDraft{}, sel)
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	draft, err = s.AddSelection(draft, sel)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(draft.Items) != 1 || draft.Items[0].Quantity != 2 {
		t.Fatalf("items = %d qty = %d, want single line qty 2", len(draft.Items), draft.Items[0].Quantity)
	}
	if !draft.Items[0].Subtotal.Equal(dec(t, "100")) {
		t.Fatalf("merged subtotal = %s, want 100", draft.Items[0].Subtotal)
	}
}

// 同一商品的不同规格组合是不同的行
func TestAddSelectionCombinationsAreDistinctLines(t *testing.T) {
	s := newTestSynchronizer(t, nil)
	draft, err := s.AddSelection(OrderDraft{}, CatalogSelection{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 3})
	if err != nil {
		t.Fatalf("base add failed: %v", err)
	}
	draft, err = s.AddSelection(draft, CatalogSelection{ProductID: 1, CombinationID: uintPtr(7), UnitPrice: dec(t, "55"), Stock: 3})
	if err != nil {
		t.Fatalf("combination add failed: %v", err)
	}
	if len(draft.Items) != 2 {
		t.Fatalf("items = %d, want 2 distinct lines", len(draft.Items))
	}
}

func TestAddSelectionInsufficientStock(t *testing.T) {
	s := newTestSynchronizer(t, nil)
	if _, err := s.AddSelection(OrderDraft{}, CatalogSelection{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 0}); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	sel := CatalogSelection{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 1}
	draft, err := s.AddSelection(OrderDraft{}, sel)
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := s.AddSelection(draft, sel); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("increment past stock err = %v, want ErrInsufficientStock", err)
	}
}

func TestAddSelectionAppliesAutomaticDiscount(t *testing.T) {
	s := newTestSynchronizer(t, []Discount{{
		ID: 1, Automatic: true, IsActive: true,
		DiscountType: constants.DiscountTypePercentage, Value: dec(t, "10"),
		AppliesTo:      constants.DiscountAppliesProduct,
		ProductTargets: []ProductTarget{{ProductID: 1}},
	}})
	out, err := s.AddSelection(OrderDraft{}, CatalogSelection{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 5})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	it := out.Items[0]
	if it.DiscountID == nil || *it.DiscountID != 1 {
		t.Fatalf("automatic discount not resolved: %+v", it)
	}
	if !it.Subtotal.Equal(dec(t, "45")) {
		t.Fatalf("subtotal = %s, want 45", it.Subtotal)
	}
}

func TestAddBulkPartialSuccess(t *testing.T) {
	s := newTestSynchronizer(t, nil)
	draft, failures := s.AddBulk(OrderDraft{}, []CatalogSelection{
		{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 3},
		{ProductID: 2, UnitPrice: dec(t, "30"), Stock: 0},
		{ProductID: 3, CombinationID: uintPtr(9), UnitPrice: dec(t, "20"), Stock: 2},
	})
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(failures))
	}
	f := failures[0]
	if f.Index != 1 || f.ProductID != 2 || !errors.Is(f.Err, ErrInsufficientStock) {
		t.Fatalf("failure = %+v, want selection 1 / product 2 / stock error", f)
	}
	if len(draft.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(draft.Items))
	}
	// 索引从 0 连续重编
	for i, it := range draft.Items {
		if it.Index != i {
			t.Fatalf("item %d has index %d", i, it.Index)
		}
	}
}

func TestAddBulkMergesDuplicateSelections(t *testing.T) {
	s := newTestSynchronizer(t, nil)
	sel := CatalogSelection{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 2}
	draft, failures := s.AddBulk(OrderDraft{}, []CatalogSelection{sel, sel, sel})
	if len(failures) != 1 || !errors.Is(failures[0].Err, ErrInsufficientStock) {
		t.Fatalf("failures = %+v, want single stock failure for third selection", failures)
	}
	if failures[0].Index != 2 {
		t.Fatalf("failure index = %d, want 2", failures[0].Index)
	}
	if len(draft.Items) != 1 || draft.Items[0].Quantity != 2 {
		t.Fatalf("items = %d qty = %d, want single line qty 2", len(draft.Items), draft.Items[0].Quantity)
	}
}

func TestAddBulkUsesSelectionCapturedDiscount(t *testing.T) {
	s := newTestSynchronizer(t, nil)
	captured := &Discount{ID: 9, DiscountType: constants.DiscountTypeFixedAmount, Value: dec(t, "5"), IsActive: true}
	draft, failures := s.AddBulk(OrderDraft{}, []CatalogSelection{
		{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 3, Discount: captured},
	})
	if len(failures) != 0 {
		t.Fatalf("failures = %+v, want none", failures)
	}
	it := draft.Items[0]
	if it.DiscountID == nil || *it.DiscountID != 9 {
		t.Fatalf("captured discount not applied: %+v", it)
	}
	if !it.Subtotal.Equal(dec(t, "45")) {
		t.Fatalf("subtotal = %s, want 45", it.Subtotal)
	}
}

func TestAddBulkDoesNotMutateInput(t *testing.T) {
	s := newTestSynchronizer(t, nil)
	orig, err := s.AddSelection(OrderDraft{}, CatalogSelection{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 5})
	if err != nil {
		t.Fatalf("seed add failed: %v", err)
	}
	_, failures := s.AddBulk(orig, []CatalogSelection{{ProductID: 1, UnitPrice: dec(t, "50"), Stock: 5}})
	if len(failures) != 0 {
		t.Fatalf("failures = %+v, want none", failures)
	}
	if orig.Items[0].Quantity != 1 {
		t.Fatalf("input draft mutated: qty = %d", orig.Items[0].Quantity)
	}
}
