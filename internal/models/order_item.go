package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表（行定价快照）
type OrderItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                           // 主键
	OrderID         uint           `gorm:"index;not null" json:"order_id"`                                 // 订单ID
	ProductID       uint           `gorm:"index;not null" json:"product_id"`                               // 商品ID
	CombinationID   *uint          `gorm:"index" json:"combination_id,omitempty"`                          // 规格组合ID（无规格商品为空）
	ProductName     string         `gorm:"type:varchar(200);not null" json:"product_name"`                 // 商品名称快照
	Quantity        int            `gorm:"not null" json:"quantity"`                                       // 数量
	OriginalPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_price"`    // 折前单价
	DiscountedPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discounted_price"`  // 折后单价
	DiscountID      *uint          `gorm:"index" json:"discount_id,omitempty"`                             // 行折扣ID
	DiscountType    string         `gorm:"type:varchar(20)" json:"discount_type,omitempty"`                // 行折扣类型
	DiscountAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`   // 行折扣金额
	Subtotal        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`          // 行小计（折后单价×数量）
	TaxRate         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_rate"`          // 税率（百分比）
	TaxAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`        // 税额
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
