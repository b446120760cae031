package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/service"

	"github.com/hibiken/asynq"
)

const stockSnapshotTTL = 5 * time.Minute

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCheckoutSettle, c.handleCheckoutSettle)
	mux.HandleFunc(queue.TaskStockSnapshotRefresh, c.handleStockSnapshotRefresh)
}

// handleCheckoutSettle 执行结算落账：折扣计数递增与礼品卡余额扣减。
// 余额冲突返回错误，交由队列按退避策略重试。
func (c *Consumer) handleCheckoutSettle(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_checkout_settle_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CheckoutSettlePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_checkout_settle_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_checkout_settle_skip_invalid_payload")
		return nil
	}

	amount := decimal.Zero
	if payload.GiftCardAmount != "" {
		parsed, err := decimal.NewFromString(payload.GiftCardAmount)
		if err != nil {
			logger.Warnw("worker_checkout_settle_bad_amount",
				"order_id", payload.OrderID,
				"amount", payload.GiftCardAmount,
				"error", err,
			)
			return err
		}
		amount = parsed
	}

	if err := c.SettlementService.Settle(service.SettleInput{
		OrderID:        payload.OrderID,
		DiscountIDs:    payload.DiscountIDs,
		GiftCardID:     payload.GiftCardID,
		GiftCardAmount: amount,
	}); err != nil {
		logger.Warnw("worker_checkout_settle_failed",
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_checkout_settle_done",
		"order_id", payload.OrderID,
		"discount_count", len(payload.DiscountIDs),
	)
	return nil
}

// handleStockSnapshotRefresh 刷新商品库存快照缓存
func (c *Consumer) handleStockSnapshotRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.StockSnapshotRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stock_snapshot_unmarshal_failed", "error", err)
		return err
	}
	if len(payload.ProductIDs) == 0 {
		return nil
	}
	products, err := c.ProductRepo.ListByIDs(payload.ProductIDs)
	if err != nil {
		logger.Warnw("worker_stock_snapshot_fetch_failed", "error", err)
		return err
	}
	for i := range products {
		p := &products[i]
		key := fmt.Sprintf("stock:product:%d", p.ID)
		snapshot := map[string]int{"base": p.Stock}
		for j := range p.Combinations {
			snapshot[fmt.Sprintf("combination:%d", p.Combinations[j].ID)] = p.Combinations[j].Stock
		}
		if err := cache.SetJSON(ctx, key, snapshot, stockSnapshotTTL); err != nil {
			logger.Warnw("worker_stock_snapshot_cache_failed", "product_id", p.ID, "error", err)
			return err
		}
	}
	return nil
}
