package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
)

// CheckoutService 结账服务：草稿定格为订单，落账走异步队列。
type CheckoutService struct {
	draftSvc      *DraftService
	settlementSvc *SettlementService
	orderRepo     repository.OrderRepository
	queueClient   *queue.Client
	now           func() time.Time
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(
	draftSvc *DraftService,
	settlementSvc *SettlementService,
	orderRepo repository.OrderRepository,
	queueClient *queue.Client,
	now func() time.Time,
) *CheckoutService {
	if now == nil {
		now = time.Now
	}
	return &CheckoutService{
		draftSvc:      draftSvc,
		settlementSvc: settlementSvc,
		orderRepo:     orderRepo,
		queueClient:   queueClient,
		now:           now,
	}
}

// Checkout 把会话草稿定格为订单。
// 订单是定价快照；使用次数递增与礼品卡扣减由结算任务异步完成。
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string) (*models.Order, error) {
	state, err := s.draftSvc.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(state.Draft.Items) == 0 {
		return nil, ErrDraftEmpty
	}

	// 草稿里的库存只是加入时的快照，下单前以目录为准再校验一次
	for i := range state.Draft.Items {
		it := &state.Draft.Items[i]
		sel, err := s.draftSvc.snapshot.Selection(it.ProductID, it.CombinationID)
		if err != nil {
			return nil, err
		}
		if sel.Stock < it.Quantity {
			return nil, pricing.ErrInsufficientStock
		}
	}

	order := s.buildOrder(state)
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	payload := s.buildSettlePayload(order, &state.Draft)
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueCheckoutSettle(payload); err != nil {
			logger.Errorw("checkout settle enqueue failed",
				"order_no", order.OrderNo,
				"error", err,
			)
		}
		// 下单后的库存快照缓存已过期，交由任务异步刷新
		productIDs := make([]uint, 0, len(state.Draft.Items))
		for i := range state.Draft.Items {
			productIDs = append(productIDs, state.Draft.Items[i].ProductID)
		}
		if err := s.queueClient.EnqueueStockSnapshotRefresh(queue.StockSnapshotRefreshPayload{ProductIDs: productIDs}); err != nil {
			logger.Warnw("stock snapshot refresh enqueue failed",
				"order_no", order.OrderNo,
				"error", err,
			)
		}
	} else {
		// 未启用队列时同步落账（单机部署与测试）
		amount := decimal.Zero
		if payload.GiftCardAmount != "" {
			amount = decimal.RequireFromString(payload.GiftCardAmount)
		}
		if err := s.settlementSvc.Settle(SettleInput{
			OrderID:        order.ID,
			DiscountIDs:    payload.DiscountIDs,
			GiftCardID:     payload.GiftCardID,
			GiftCardAmount: amount,
		}); err != nil {
			return nil, err
		}
		order.Status = constants.OrderStatusCompleted
	}

	if err := s.draftSvc.Clear(ctx, sessionID); err != nil {
		logger.Warnw("draft clear after checkout failed",
			"session_id", sessionID,
			"error", err,
		)
	}
	return order, nil
}

// buildOrder 由草稿构建订单快照
func (s *CheckoutService) buildOrder(state *cache.DraftState) *models.Order {
	draft := &state.Draft
	order := &models.Order{
		OrderNo:              generateOrderNo(s.now()),
		CustomerID:           state.CustomerID,
		Status:               constants.OrderStatusPaid,
		Subtotal:             models.NewMoneyFromDecimal(draft.Subtotal),
		TaxAmount:            models.NewMoneyFromDecimal(draft.TaxAmount),
		AutoDiscountAmount:   models.NewMoneyFromDecimal(draft.AutoDiscountAmount),
		ManualDiscountCode:   draft.ManualDiscountCode,
		ManualDiscountAmount: models.NewMoneyFromDecimal(draft.ManualDiscountAmount),
		ManualDiscountID:     draft.ManualDiscountID,
		GiftCardID:           draft.GiftCardID,
		GiftCardAmount:       models.NewMoneyFromDecimal(draft.GiftCardAmount),
		Total:                models.NewMoneyFromDecimal(draft.Total),
	}
	now := s.now()
	order.PaidAt = &now
	for i := range draft.Items {
		it := &draft.Items[i]
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       it.ProductID,
			CombinationID:   it.CombinationID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			OriginalPrice:   models.NewMoneyFromDecimal(it.OriginalPrice),
			DiscountedPrice: models.NewMoneyFromDecimal(it.DiscountedPrice),
			DiscountID:      it.DiscountID,
			DiscountType:    it.DiscountType,
			DiscountAmount:  models.NewMoneyFromDecimal(it.DiscountAmount),
			Subtotal:        models.NewMoneyFromDecimal(it.Subtotal),
			TaxRate:         models.NewMoneyFromDecimal(it.TaxRate),
			TaxAmount:       models.NewMoneyFromDecimal(it.TaxAmount),
		})
	}
	return order
}

// buildSettlePayload 汇总结算副作用：
// 行级折扣与手动折扣各递增一次使用次数（同一折扣去重）；
// 订单级自动折扣只记录金额，不做使用次数追踪。
func (s *CheckoutService) buildSettlePayload(order *models.Order, draft *pricing.OrderDraft) queue.CheckoutSettlePayload {
	payload := queue.CheckoutSettlePayload{OrderID: order.ID}
	seen := make(map[uint]struct{})
	add := func(id uint) {
		if id == 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		payload.DiscountIDs = append(payload.DiscountIDs, id)
	}
	for i := range draft.Items {
		if draft.Items[i].DiscountID != nil {
			add(*draft.Items[i].DiscountID)
		}
	}
	if draft.ManualDiscountID != nil {
		add(*draft.ManualDiscountID)
	}
	if draft.GiftCardID != nil && draft.GiftCardAmount.GreaterThan(decimal.Zero) {
		id := *draft.GiftCardID
		payload.GiftCardID = &id
		payload.GiftCardAmount = draft.GiftCardAmount.Round(2).StringFixed(2)
	}
	return payload
}

// GetOrderByOrderNo 按订单编号获取订单
func (s *CheckoutService) GetOrderByOrderNo(orderNo string) (*models.Order, error) {
	trimmed := strings.TrimSpace(orderNo)
	if trimmed == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNo(trimmed)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func generateOrderNo(now time.Time) string {
	return fmt.Sprintf("SF%s%s", now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
