package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（结账时由草稿快照生成）
type Order struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                               // 主键
	OrderNo            string         `gorm:"uniqueIndex;not null" json:"order_no"`                               // 订单编号
	CustomerID         uint           `gorm:"index" json:"customer_id,omitempty"`                                 // 客户ID（匿名草稿为 0）
	Status             string         `gorm:"index;not null" json:"status"`                                       // 订单状态
	Subtotal           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`              // 行小计合计
	TaxAmount          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`            // 税额合计
	AutoDiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"auto_discount_amount"`  // 订单级自动折扣金额
	ManualDiscountCode string         `gorm:"type:varchar(80)" json:"manual_discount_code,omitempty"`             // 手动折扣码
	ManualDiscountAmount Money        `gorm:"type:decimal(20,2);not null;default:0" json:"manual_discount_amount"` // 手动折扣金额
	ManualDiscountID   *uint          `gorm:"index" json:"manual_discount_id,omitempty"`                          // 手动折扣ID
	GiftCardID         *uint          `gorm:"index" json:"gift_card_id,omitempty"`                                // 礼品卡ID（与手动折扣互斥）
	GiftCardAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"gift_card_amount"`      // 礼品卡抵扣金额
	Total              Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`                 // 实付金额
	PaidAt             *time.Time     `gorm:"index" json:"paid_at"`                                               // 支付时间
	CanceledAt         *time.Time     `gorm:"index" json:"canceled_at"`                                           // 取消时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                            // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
