package constants

// 折扣类型常量
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

// 折扣适用范围常量
const (
	DiscountAppliesOrderTotal = "order_total"
	DiscountAppliesProduct    = "product"
	DiscountAppliesCategory   = "category"
)

// 订单状态常量
const (
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
)

// 异步任务类型常量
const (
	TaskCheckoutSettle       = "checkout:settle"
	TaskStockSnapshotRefresh = "stock:snapshot_refresh"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 草稿会话请求头
const (
	DraftSessionHeader = "X-Draft-Session"
)
