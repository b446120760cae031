package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCheckoutSettle 结算落账任务（折扣计数与礼品卡余额）
	TaskCheckoutSettle = constants.TaskCheckoutSettle
	// TaskStockSnapshotRefresh 库存快照刷新任务
	TaskStockSnapshotRefresh = constants.TaskStockSnapshotRefresh
)

// CheckoutSettlePayload 结算落账任务载荷。
// 定价引擎只读快照，这里记录结账时需要落库的副作用。
type CheckoutSettlePayload struct {
	OrderID        uint   `json:"order_id"`
	DiscountIDs    []uint `json:"discount_ids,omitempty"`     // 需要递增使用次数的折扣
	GiftCardID     *uint  `json:"gift_card_id,omitempty"`     // 需要扣减余额的礼品卡
	GiftCardAmount string `json:"gift_card_amount,omitempty"` // 扣减金额（2 位小数字符串）
}

// StockSnapshotRefreshPayload 库存快照刷新任务载荷
type StockSnapshotRefreshPayload struct {
	ProductIDs []uint `json:"product_ids"`
}

// NewCheckoutSettleTask 创建结算落账任务
func NewCheckoutSettleTask(payload CheckoutSettlePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutSettle, body), nil
}

// NewStockSnapshotRefreshTask 创建库存快照刷新任务
func NewStockSnapshotRefreshTask(payload StockSnapshotRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockSnapshotRefresh, body), nil
}
