package pricing

// Synchronizer 购物车行同步器：把目录选择批量合并进草稿。
// 部分成功语义——单个选择失败不影响其它选择，失败明细逐条返回。
type Synchronizer struct {
	*Resolver
}

// NewSynchronizer 创建行同步器
func NewSynchronizer(resolver *Resolver) *Synchronizer {
	return &Synchronizer{Resolver: resolver}
}

// AddBulk 将一组目录选择合并进草稿。
// 已存在的（商品，组合）行数量加一；新行以数量 1 追加。
// 库存不足的选择记入失败列表并跳过。返回的草稿行索引从 0 连续重编。
func (s *Synchronizer) AddBulk(draft OrderDraft, selections []CatalogSelection) (OrderDraft, []SelectionFailure) {
	out := draft.Clone()
	var failures []SelectionFailure
	for i := range selections {
		if err := s.addSelection(&out, &selections[i]); err != nil {
			failures = append(failures, SelectionFailure{
				Index:         i,
				ProductID:     selections[i].ProductID,
				CombinationID: selections[i].CombinationID,
				Err:           err,
			})
		}
	}
	reindex(out.Items)
	return out, failures
}

// AddSelection 将单个目录选择合并进草稿
func (s *Synchronizer) AddSelection(draft OrderDraft, sel CatalogSelection) (OrderDraft, error) {
	out := draft.Clone()
	err := s.addSelection(&out, &sel)
	reindex(out.Items)
	return out, err
}

func (s *Synchronizer) addSelection(draft *OrderDraft, sel *CatalogSelection) error {
	for i := range draft.Items {
		it := &draft.Items[i]
		if !it.SameIdentity(sel.ProductID, sel.CombinationID) {
			continue
		}
		if it.Quantity+1 > it.Stock {
			return ErrInsufficientStock
		}
		it.Quantity++
		RepriceLineItem(it, sel.Discount)
		return nil
	}

	if sel.Stock < 1 {
		return ErrInsufficientStock
	}
	item := LineItem{
		ProductID:     sel.ProductID,
		CombinationID: cloneUintPtr(sel.CombinationID),
		ProductName:   sel.ProductName,
		Quantity:      1,
		OriginalPrice: sel.UnitPrice,
		TaxRate:       sel.TaxRate,
		Stock:         sel.Stock,
		CategoryIDs:   append([]uint(nil), sel.CategoryIDs...),
	}
	d := sel.Discount
	if d == nil {
		d = s.FindApplicableDiscount(sel.ProductID, sel.CombinationID)
	}
	RepriceLineItem(&item, d)
	draft.Items = append(draft.Items, item)
	return nil
}

// reindex 行索引从 0 起连续重编
func reindex(items []LineItem) {
	for i := range items {
		items[i].Index = i
	}
}

func cloneUintPtr(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
