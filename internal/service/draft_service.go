package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/pricing"
)

// SelectionInput 单个目录选择输入
type SelectionInput struct {
	ProductID     uint  `json:"product_id" binding:"required"`
	CombinationID *uint `json:"combination_id"`
}

// DraftService 订单草稿服务：维护会话草稿，驱动定价引擎。
// 引擎本身无副作用，本服务负责快照输入、持久化草稿与汇总金额。
type DraftService struct {
	store    cache.DraftStore
	snapshot *catalog.Snapshotter
	now      func() time.Time
}

// NewDraftService 创建草稿服务
func NewDraftService(store cache.DraftStore, snapshot *catalog.Snapshotter, now func() time.Time) *DraftService {
	if now == nil {
		now = time.Now
	}
	return &DraftService{store: store, snapshot: snapshot, now: now}
}

// Get 获取会话草稿，不存在时返回空草稿（不落存储）。
func (s *DraftService) Get(ctx context.Context, sessionID string) (*cache.DraftState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionRequired
	}
	state, hit, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !hit {
		return &cache.DraftState{SessionID: sessionID}, nil
	}
	return state, nil
}

// BindCustomer 把会话草稿绑定到客户（登录后调用）。
func (s *DraftService) BindCustomer(ctx context.Context, sessionID string, customerID uint) (*cache.DraftState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.snapshot.CustomerContext(customerID); err != nil {
		return nil, err
	}
	state.CustomerID = customerID
	resolver, err := s.resolver()
	if err != nil {
		return nil, err
	}
	if err := s.finalize(ctx, state, resolver); err != nil {
		return nil, err
	}
	return state, s.store.Set(ctx, state)
}

// AddItem 把单个目录选择加入草稿（已存在的行数量加一）。
func (s *DraftService) AddItem(ctx context.Context, sessionID string, input SelectionInput) (*cache.DraftState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resolver, err := s.resolver()
	if err != nil {
		return nil, err
	}
	sel, err := s.snapshot.Selection(input.ProductID, input.CombinationID)
	if err != nil {
		return nil, err
	}
	sel.Discount = resolver.FindApplicableDiscount(sel.ProductID, sel.CombinationID)

	sync := pricing.NewSynchronizer(resolver)
	draft, err := sync.AddSelection(state.Draft, *sel)
	if err != nil {
		return nil, err
	}
	state.Draft = draft
	if err := s.finalize(ctx, state, resolver); err != nil {
		return nil, err
	}
	return state, s.store.Set(ctx, state)
}

// AddBulk 批量加入目录选择，部分成功：失败的选择逐条返回，成功的照常生效。
func (s *DraftService) AddBulk(ctx context.Context, sessionID string, inputs []SelectionInput) (*cache.DraftState, []pricing.SelectionFailure, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	resolver, err := s.resolver()
	if err != nil {
		return nil, nil, err
	}

	// 快照阶段失败（商品下架等）与库存阶段失败合并返回，索引均指向原始输入
	var failures []pricing.SelectionFailure
	selections := make([]pricing.CatalogSelection, 0, len(inputs))
	originalIndex := make([]int, 0, len(inputs))
	for i, input := range inputs {
		sel, err := s.snapshot.Selection(input.ProductID, input.CombinationID)
		if err != nil {
			failures = append(failures, pricing.SelectionFailure{
				Index:         i,
				ProductID:     input.ProductID,
				CombinationID: input.CombinationID,
				Err:           err,
			})
			continue
		}
		sel.Discount = resolver.FindApplicableDiscount(sel.ProductID, sel.CombinationID)
		selections = append(selections, *sel)
		originalIndex = append(originalIndex, i)
	}

	sync := pricing.NewSynchronizer(resolver)
	draft, stockFailures := sync.AddBulk(state.Draft, selections)
	for _, f := range stockFailures {
		f.Index = originalIndex[f.Index]
		failures = append(failures, f)
	}

	state.Draft = draft
	if err := s.finalize(ctx, state, resolver); err != nil {
		return nil, nil, err
	}
	if err := s.store.Set(ctx, state); err != nil {
		return nil, nil, err
	}
	return state, failures, nil
}

// RemoveItem 从草稿移除一行
func (s *DraftService) RemoveItem(ctx context.Context, sessionID string, productID uint, combinationID *uint) (*cache.DraftState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	draft := state.Draft.Clone()
	kept := draft.Items[:0]
	removed := false
	for i := range draft.Items {
		if draft.Items[i].SameIdentity(productID, combinationID) {
			removed = true
			continue
		}
		kept = append(kept, draft.Items[i])
	}
	if !removed {
		return nil, ErrItemNotInDraft
	}
	draft.Items = kept
	for i := range draft.Items {
		draft.Items[i].Index = i
	}
	state.Draft = draft

	resolver, err := s.resolver()
	if err != nil {
		return nil, err
	}
	if err := s.finalize(ctx, state, resolver); err != nil {
		return nil, err
	}
	return state, s.store.Set(ctx, state)
}

// ApplyCode 对草稿应用折扣码或礼品卡码。
// 失败时引擎已按约定清除此前的手动折扣，草稿仍会持久化。
func (s *DraftService) ApplyCode(ctx context.Context, sessionID, code string) (*cache.DraftState, pricing.RedemptionResult, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, pricing.RedemptionResult{}, err
	}
	resolver, err := s.resolver()
	if err != nil {
		return nil, pricing.RedemptionResult{}, err
	}
	customer, err := s.snapshot.CustomerContext(state.CustomerID)
	if err != nil {
		return nil, pricing.RedemptionResult{}, err
	}

	// 礼品卡封顶依赖当前应付金额，先把总额算到最新
	s.recomputeTotals(state, resolver)

	redeemer := pricing.NewRedeemer(resolver)
	draft, result, applyErr := redeemer.ApplyCode(state.Draft, code, customer)
	state.Draft = draft
	s.recomputeTotals(state, resolver)
	if err := s.store.Set(ctx, state); err != nil {
		return nil, pricing.RedemptionResult{}, err
	}
	return state, result, applyErr
}

// RemoveCode 撤销草稿上的手动折扣与礼品卡
func (s *DraftService) RemoveCode(ctx context.Context, sessionID string) (*cache.DraftState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resolver, err := s.resolver()
	if err != nil {
		return nil, err
	}
	redeemer := pricing.NewRedeemer(resolver)
	draft := redeemer.ClearManualDiscount(state.Draft)
	draft.GiftCardID = nil
	draft.GiftCardAmount = decimal.Zero
	state.Draft = draft
	s.recomputeTotals(state, resolver)
	return state, s.store.Set(ctx, state)
}

// Clear 清空会话草稿
func (s *DraftService) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	return s.store.Del(ctx, sessionID)
}

func (s *DraftService) resolver() (*pricing.Resolver, error) {
	discounts, err := s.snapshot.DiscountCatalog()
	if err != nil {
		return nil, err
	}
	return pricing.NewResolver(discounts, s.now), nil
}

// finalize 行集合变化后的收尾：重算手动折扣、礼品卡与各项总额。
func (s *DraftService) finalize(ctx context.Context, state *cache.DraftState, resolver *pricing.Resolver) error {
	redeemer := pricing.NewRedeemer(resolver)

	// 已应用的折扣码随购物车变化重新评估；不再满足条件时静默撤销
	if code := state.Draft.ManualDiscountCode; code != "" {
		state.Draft = redeemer.ClearManualDiscount(state.Draft)
		s.recomputeTotals(state, resolver)
		customer, err := s.snapshot.CustomerContext(state.CustomerID)
		if err != nil {
			return err
		}
		if draft, _, applyErr := redeemer.ApplyCode(state.Draft, code, customer); applyErr == nil {
			state.Draft = draft
		}
	}

	s.recomputeTotals(state, resolver)

	// 礼品卡抵扣随应付金额重新封顶；卡不可用时撤销
	if state.Draft.GiftCardID != nil {
		if err := s.recapGiftCard(ctx, state, resolver); err != nil {
			return err
		}
	}
	return nil
}

// recomputeTotals 重算草稿汇总金额：
// total = subtotal + tax − 订单级自动折扣 − 手动折扣 − 礼品卡抵扣（不为负）。
// 订单级自动折扣与手动折扣/礼品卡相互独立、叠加生效。
func (s *DraftService) recomputeTotals(state *cache.DraftState, resolver *pricing.Resolver) {
	draft := &state.Draft
	subtotal := draft.SumSubtotal()
	tax := decimal.Zero
	for i := range draft.Items {
		tax = tax.Add(draft.Items[i].TaxAmount)
	}
	draft.Subtotal = subtotal
	draft.TaxAmount = tax.Round(2)
	draft.AutoDiscountAmount = resolver.ResolveOrderDiscount(subtotal)

	total := subtotal.Add(draft.TaxAmount).
		Sub(draft.AutoDiscountAmount).
		Sub(draft.ManualDiscountAmount).
		Sub(draft.GiftCardAmount)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}
	draft.Total = total.Round(2)
}

// recapGiftCard 按最新应付金额与卡余额重新封顶礼品卡抵扣
func (s *DraftService) recapGiftCard(ctx context.Context, state *cache.DraftState, resolver *pricing.Resolver) error {
	customer, err := s.snapshot.CustomerContext(state.CustomerID)
	if err != nil {
		return err
	}
	var card *pricing.GiftCard
	if customer != nil {
		for i := range customer.GiftCards {
			if state.Draft.GiftCardID != nil && customer.GiftCards[i].ID == *state.Draft.GiftCardID {
				card = &customer.GiftCards[i]
				break
			}
		}
	}
	if card == nil || !card.IsActive ||
		(card.ExpirationDate != nil && card.ExpirationDate.Before(s.now())) ||
		!card.CurrentBalance.GreaterThan(decimal.Zero) {
		state.Draft.GiftCardID = nil
		state.Draft.GiftCardAmount = decimal.Zero
		s.recomputeTotals(state, resolver)
		return nil
	}

	// 封顶基准是扣除礼品卡前的应付金额
	payable := state.Draft.Total.Add(state.Draft.GiftCardAmount)
	amount := card.CurrentBalance
	if amount.GreaterThan(payable) {
		amount = payable
	}
	state.Draft.GiftCardAmount = amount.Round(2)
	s.recomputeTotals(state, resolver)
	return nil
}
